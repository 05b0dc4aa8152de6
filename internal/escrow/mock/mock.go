// Package mock provides an in-memory escrow client for development and tests.
package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tugrulb/escrowmarket/internal/escrow"
)

// Client is an in-memory escrow ledger that always accepts operations and
// tracks account status so Get reflects prior calls.
type Client struct {
	mu       sync.Mutex
	accounts map[string]*escrow.State

	// FailWith, when set, is returned by every operation. Tests use it to
	// simulate ledger outages.
	FailWith *escrow.Error
}

// New creates a mock escrow client.
func New() *Client {
	return &Client{accounts: make(map[string]*escrow.State)}
}

func (c *Client) receipt(address string) *escrow.Receipt {
	return &escrow.Receipt{
		EscrowAddress: address,
		TxSignature:   "mock_tx_" + uuid.New().String(),
	}
}

func (c *Client) transition(address, status string) (*escrow.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailWith != nil {
		return nil, c.FailWith
	}

	state, ok := c.accounts[address]
	if !ok {
		return nil, &escrow.Error{Kind: escrow.KindRejected, Message: "escrow account not found: " + address}
	}
	state.Status = status
	return c.receipt(address), nil
}

// Create opens a new in-memory escrow account.
func (c *Client) Create(_ context.Context, input *escrow.CreateInput) (*escrow.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailWith != nil {
		return nil, c.FailWith
	}

	address := "mock_escrow_" + uuid.New().String()
	c.accounts[address] = &escrow.State{
		EscrowAddress: address,
		Status:        escrow.StatusCreated,
		Amount:        input.Amount,
	}
	return c.receipt(address), nil
}

// Fund marks the account as funded.
func (c *Client) Fund(_ context.Context, escrowAddress string) (*escrow.Receipt, error) {
	return c.transition(escrowAddress, escrow.StatusFunded)
}

// MarkShipped marks the account as shipped.
func (c *Client) MarkShipped(_ context.Context, escrowAddress, _ string) (*escrow.Receipt, error) {
	return c.transition(escrowAddress, escrow.StatusShipped)
}

// ConfirmDelivery marks the account as completed.
func (c *Client) ConfirmDelivery(_ context.Context, escrowAddress string) (*escrow.Receipt, error) {
	return c.transition(escrowAddress, escrow.StatusCompleted)
}

// Dispute marks the account as disputed.
func (c *Client) Dispute(_ context.Context, escrowAddress, _ string) (*escrow.Receipt, error) {
	return c.transition(escrowAddress, escrow.StatusDisputed)
}

// Cancel marks the account as cancelled.
func (c *Client) Cancel(_ context.Context, escrowAddress string) (*escrow.Receipt, error) {
	return c.transition(escrowAddress, escrow.StatusCancelled)
}

// Get returns the current state of an in-memory account.
func (c *Client) Get(_ context.Context, escrowAddress string) (*escrow.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailWith != nil {
		return nil, c.FailWith
	}

	state, ok := c.accounts[escrowAddress]
	if !ok {
		return nil, &escrow.Error{Kind: escrow.KindRejected, Message: "escrow account not found: " + escrowAddress}
	}
	cp := *state
	return &cp, nil
}
