package database

import (
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

// NewMockPool creates a pgxmock pool scoped to the test, closing it when the
// test finishes. The returned pool satisfies DBTX and can be handed to any
// repository constructor. Call ExpectationsWereMet() at the end of the test.
func NewMockPool(tb testing.TB) pgxmock.PgxPoolIface {
	tb.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		tb.Fatalf("create mock pool: %v", err)
	}
	tb.Cleanup(mock.Close)
	return mock
}
