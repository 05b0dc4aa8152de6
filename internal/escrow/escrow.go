// Package escrow defines the client contract for the external ledger that
// holds buyer funds in custody until delivery is confirmed.
package escrow

import (
	"context"
	"fmt"
)

// Escrow status values as reported by the ledger gateway.
const (
	StatusCreated   = "CREATED"
	StatusFunded    = "FUNDED"
	StatusShipped   = "SHIPPED"
	StatusCompleted = "COMPLETED"
	StatusDisputed  = "DISPUTED"
	StatusCancelled = "CANCELLED"
	StatusRefunded  = "REFUNDED"
)

// ErrorKind classifies ledger failures by what the caller may safely conclude.
type ErrorKind string

const (
	// KindUnavailable means the gateway could not be reached or returned a
	// server error. The operation did not happen.
	KindUnavailable ErrorKind = "UNAVAILABLE"
	// KindRejected means the ledger refused the operation. The operation did
	// not happen and retrying the same request will not help.
	KindRejected ErrorKind = "REJECTED"
	// KindTimeout means the call exceeded its deadline. The outcome is
	// unknown; callers must re-read escrow state before retrying.
	KindTimeout ErrorKind = "TIMEOUT"
)

// Error is a classified ledger failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("escrow %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("escrow %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CreateInput holds the parameters for opening a new escrow account.
type CreateInput struct {
	OrderID      string
	BuyerWallet  string
	SellerWallet string
	Amount       int64
	Currency     string

	// FeeBasisPoints is the marketplace cut withheld by the ledger when the
	// escrowed funds are released to the seller.
	FeeBasisPoints int
}

// Receipt is the ledger's confirmation of an accepted escrow operation.
type Receipt struct {
	EscrowAddress string
	TxSignature   string
}

// State is the ledger-side view of an escrow account, used during
// reconciliation to discover the outcome of a timed-out call.
type State struct {
	EscrowAddress string
	Status        string
	Amount        int64
}

// Client drives the escrow account lifecycle on the external ledger. Every
// method returns either a receipt or an *Error whose Kind tells the caller
// whether the operation definitively failed or its outcome is unknown.
type Client interface {
	// Create opens a new escrow account for an order.
	Create(ctx context.Context, input *CreateInput) (*Receipt, error)

	// Fund locks the buyer's payment into the escrow account.
	Fund(ctx context.Context, escrowAddress string) (*Receipt, error)

	// MarkShipped records the shipment on the ledger.
	MarkShipped(ctx context.Context, escrowAddress, trackingNumber string) (*Receipt, error)

	// ConfirmDelivery releases the escrowed funds to the seller.
	ConfirmDelivery(ctx context.Context, escrowAddress string) (*Receipt, error)

	// Dispute freezes the escrow pending manual resolution.
	Dispute(ctx context.Context, escrowAddress, reason string) (*Receipt, error)

	// Cancel returns any escrowed funds to the buyer.
	Cancel(ctx context.Context, escrowAddress string) (*Receipt, error)

	// Get reads the current ledger-side state of an escrow account.
	Get(ctx context.Context, escrowAddress string) (*State, error)
}
