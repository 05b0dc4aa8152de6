package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

func TestCanTransitionMatrix(t *testing.T) {
	// allowed enumerates every permitted (current, requested, role) triple.
	allowed := map[[3]string]bool{
		{OrderStatusCreated, OrderStatusFunded, string(RoleBuyer)}:    true,
		{OrderStatusCreated, OrderStatusCancelled, string(RoleBuyer)}: true,
		{OrderStatusFunded, OrderStatusShipped, string(RoleSeller)}:   true,
		{OrderStatusFunded, OrderStatusCancelled, string(RoleBuyer)}:  true,
		{OrderStatusFunded, OrderStatusCancelled, string(RoleSeller)}: true,
		{OrderStatusShipped, OrderStatusCompleted, string(RoleBuyer)}: true,
		{OrderStatusShipped, OrderStatusDisputed, string(RoleBuyer)}:  true,
	}

	for _, current := range ValidStatuses() {
		for _, requested := range ValidStatuses() {
			for _, role := range []Role{RoleBuyer, RoleSeller} {
				err := CanTransition(current, requested, role, "TRACK-1")
				if allowed[[3]string{current, requested, string(role)}] {
					assert.NoError(t, err, "%s -> %s as %s should be allowed", current, requested, role)
				} else {
					assert.Error(t, err, "%s -> %s as %s should be denied", current, requested, role)
				}
			}
		}
	}
}

func TestCanTransitionTrackingRequired(t *testing.T) {
	err := CanTransition(OrderStatusFunded, OrderStatusShipped, RoleSeller, "")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "MISSING_TRACKING_NUMBER", appErr.Code)

	assert.NoError(t, CanTransition(OrderStatusFunded, OrderStatusShipped, RoleSeller, "TRACK-99"))
}

func TestCanTransitionWrongRole(t *testing.T) {
	// Seller attempting the buyer-only delivery confirmation.
	err := CanTransition(OrderStatusShipped, OrderStatusCompleted, RoleSeller, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestCanTransitionTerminal(t *testing.T) {
	for _, terminal := range []string{OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded, OrderStatusDisputed} {
		for _, requested := range ValidStatuses() {
			err := CanTransition(terminal, requested, RoleBuyer, "TRACK-1")
			assert.Error(t, err, "terminal %s must deny transition to %s", terminal, requested)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	err := CanTransition("BOGUS", OrderStatusFunded, RoleBuyer, "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
}

func TestAllowedTargets(t *testing.T) {
	assert.ElementsMatch(t, []string{OrderStatusFunded, OrderStatusCancelled}, AllowedTargets(OrderStatusCreated, RoleBuyer))
	assert.Empty(t, AllowedTargets(OrderStatusCreated, RoleSeller))
	assert.ElementsMatch(t, []string{OrderStatusShipped, OrderStatusCancelled}, AllowedTargets(OrderStatusFunded, RoleSeller))
	assert.Empty(t, AllowedTargets(OrderStatusCompleted, RoleBuyer))
}

func TestRoleOf(t *testing.T) {
	o := &Order{BuyerID: "b1", SellerID: "s1"}

	assert.Equal(t, RoleBuyer, o.RoleOf("b1"))
	assert.Equal(t, RoleSeller, o.RoleOf("s1"))
	assert.Equal(t, Role(""), o.RoleOf("someone-else"))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusCompleted))
	assert.True(t, IsTerminalStatus(OrderStatusDisputed))
	assert.False(t, IsTerminalStatus(OrderStatusShipped))
	assert.False(t, IsTerminalStatus(OrderStatusCreated))
}

func TestHasEscrow(t *testing.T) {
	addr := "EsCrOw111"
	assert.True(t, (&Order{EscrowAddress: &addr}).HasEscrow())
	empty := ""
	assert.False(t, (&Order{EscrowAddress: &empty}).HasEscrow())
	assert.False(t, (&Order{}).HasEscrow())
}

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, IsValidCurrency(CurrencySOL))
	assert.True(t, IsValidCurrency(CurrencyUSDC))
	assert.True(t, IsValidCurrency(CurrencyUSDT))
	assert.False(t, IsValidCurrency("BTC"))
}
