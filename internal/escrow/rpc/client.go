// Package rpc implements the escrow ledger client against the HTTP gateway
// that fronts the on-chain escrow program.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tugrulb/escrowmarket/internal/escrow"
	"github.com/tugrulb/escrowmarket/pkg/httpclient"
)

// Config holds the gateway client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the escrow gateway over HTTP with a circuit breaker. All
// failures are classified into escrow.Error kinds so the service layer never
// inspects transport details.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a gateway client.
func New(cfg Config, logger *slog.Logger) *Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.Timeout
	// Ledger mutations are not idempotent at the transport level. A failed
	// call surfaces as an error and the caller decides whether to re-issue.
	httpCfg.MaxRetries = 0

	inner := httpclient.New(httpCfg)
	cb := httpclient.NewCircuitBreakerClient(inner, httpclient.DefaultCircuitBreakerConfig("escrow-gateway"), logger)

	return &Client{
		http:    cb,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

type receiptResponse struct {
	EscrowAddress string `json:"escrow_address"`
	TxSignature   string `json:"tx_signature"`
}

type stateResponse struct {
	EscrowAddress string `json:"escrow_address"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Create opens a new escrow account for an order.
func (c *Client) Create(ctx context.Context, input *escrow.CreateInput) (*escrow.Receipt, error) {
	body := map[string]any{
		"order_id":         input.OrderID,
		"buyer_wallet":     input.BuyerWallet,
		"seller_wallet":    input.SellerWallet,
		"amount":           input.Amount,
		"currency":         input.Currency,
		"fee_basis_points": input.FeeBasisPoints,
	}
	return c.post(ctx, "create", "/v1/escrows", body)
}

// Fund locks the buyer's payment into the escrow account.
func (c *Client) Fund(ctx context.Context, escrowAddress string) (*escrow.Receipt, error) {
	return c.post(ctx, "fund", "/v1/escrows/"+escrowAddress+"/fund", nil)
}

// MarkShipped records the shipment on the ledger.
func (c *Client) MarkShipped(ctx context.Context, escrowAddress, trackingNumber string) (*escrow.Receipt, error) {
	return c.post(ctx, "ship", "/v1/escrows/"+escrowAddress+"/ship", map[string]any{
		"tracking_number": trackingNumber,
	})
}

// ConfirmDelivery releases the escrowed funds to the seller.
func (c *Client) ConfirmDelivery(ctx context.Context, escrowAddress string) (*escrow.Receipt, error) {
	return c.post(ctx, "complete", "/v1/escrows/"+escrowAddress+"/complete", nil)
}

// Dispute freezes the escrow pending manual resolution.
func (c *Client) Dispute(ctx context.Context, escrowAddress, reason string) (*escrow.Receipt, error) {
	return c.post(ctx, "dispute", "/v1/escrows/"+escrowAddress+"/dispute", map[string]any{
		"reason": reason,
	})
}

// Cancel returns any escrowed funds to the buyer.
func (c *Client) Cancel(ctx context.Context, escrowAddress string) (*escrow.Receipt, error) {
	return c.post(ctx, "cancel", "/v1/escrows/"+escrowAddress+"/cancel", nil)
}

// Get reads the ledger-side state of an escrow account.
func (c *Client) Get(ctx context.Context, escrowAddress string) (state *escrow.State, err error) {
	timer := prometheus.NewTimer(escrowRequestDuration.WithLabelValues("get"))
	defer func() {
		timer.ObserveDuration()
		escrowRequestsTotal.WithLabelValues("get", outcomeLabel(err)).Inc()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.Get(ctx, c.baseURL+"/v1/escrows/"+escrowAddress)
	if err != nil {
		return nil, c.classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyStatus(resp)
	}

	var decoded stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &escrow.Error{Kind: escrow.KindUnavailable, Message: "malformed gateway response", Err: err}
	}

	return &escrow.State{
		EscrowAddress: decoded.EscrowAddress,
		Status:        decoded.Status,
		Amount:        decoded.Amount,
	}, nil
}

func (c *Client) post(ctx context.Context, operation, path string, body map[string]any) (receipt *escrow.Receipt, err error) {
	timer := prometheus.NewTimer(escrowRequestDuration.WithLabelValues(operation))
	defer func() {
		timer.ObserveDuration()
		escrowRequestsTotal.WithLabelValues(operation, outcomeLabel(err)).Inc()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &escrow.Error{Kind: escrow.KindRejected, Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	resp, err := c.http.Post(ctx, c.baseURL+path, "application/json", reader)
	if err != nil {
		return nil, c.classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.classifyStatus(resp)
	}

	var decoded receiptResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &escrow.Error{Kind: escrow.KindUnavailable, Message: "malformed gateway response", Err: err}
	}
	if decoded.TxSignature == "" {
		return nil, &escrow.Error{Kind: escrow.KindUnavailable, Message: "gateway returned no transaction signature"}
	}

	return &escrow.Receipt{
		EscrowAddress: decoded.EscrowAddress,
		TxSignature:   decoded.TxSignature,
	}, nil
}

// classifyTransportError maps request errors into escrow error kinds. Deadline
// expiry is the only case where the outcome is unknown.
func (c *Client) classifyTransportError(err error) *escrow.Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &escrow.Error{Kind: escrow.KindTimeout, Message: "gateway call exceeded deadline", Err: err}
	}
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return &escrow.Error{Kind: escrow.KindUnavailable, Message: "gateway circuit breaker open", Err: err}
	}
	return &escrow.Error{Kind: escrow.KindUnavailable, Message: "gateway unreachable", Err: err}
}

// classifyStatus maps non-success gateway responses. 4xx means the ledger
// refused the operation; anything else counts as unavailable.
func (c *Client) classifyStatus(resp *http.Response) *escrow.Error {
	var body errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	msg := body.Message
	if msg == "" {
		msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		if resp.StatusCode == http.StatusNotFound {
			return &escrow.Error{Kind: escrow.KindRejected, Message: "escrow account not found: " + msg}
		}
		return &escrow.Error{Kind: escrow.KindRejected, Message: msg}
	}
	return &escrow.Error{Kind: escrow.KindUnavailable, Message: msg}
}
