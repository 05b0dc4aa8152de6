package domain

import (
	"time"

	apperrors "github.com/tugrulb/escrowmarket/pkg/errors"
)

// Order status constants. Status only moves forward through validated
// transitions; COMPLETED, CANCELLED, and REFUNDED are terminal. DISPUTED is
// terminal pending manual resolution.
const (
	OrderStatusCreated   = "CREATED"
	OrderStatusFunded    = "FUNDED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusDisputed  = "DISPUTED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusRefunded  = "REFUNDED"
)

// MaxShippingAddressLen bounds the optional free-text shipping address.
const MaxShippingAddressLen = 200

// Role identifies which side of an order the caller is on.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
)

// Order represents a purchase with funds held in escrow until delivery.
type Order struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	BuyerID         string    `json:"buyer_id"`
	BuyerWallet     string    `json:"buyer_wallet"`
	SellerID        string    `json:"seller_id"`
	SellerWallet    string    `json:"seller_wallet"`
	Quantity        int64     `json:"quantity"`
	UnitPrice       int64     `json:"unit_price"`
	TotalAmount     int64     `json:"total_amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	ShippingAddress *string   `json:"shipping_address,omitempty"`
	EscrowAddress   *string   `json:"escrow_address,omitempty"`
	EscrowTx        *string   `json:"escrow_tx,omitempty"`
	TrackingNumber  *string   `json:"tracking_number,omitempty"`
	DisputeReason   *string   `json:"dispute_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RoleOf returns the caller's role on this order, or an empty role if the
// caller is neither party.
func (o *Order) RoleOf(userID string) Role {
	switch userID {
	case o.BuyerID:
		return RoleBuyer
	case o.SellerID:
		return RoleSeller
	default:
		return ""
	}
}

// HasEscrow reports whether the escrow account was successfully created on the
// ledger for this order.
func (o *Order) HasEscrow() bool {
	return o.EscrowAddress != nil && *o.EscrowAddress != ""
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusCreated,
		OrderStatusFunded,
		OrderStatusShipped,
		OrderStatusCompleted,
		OrderStatusDisputed,
		OrderStatusCancelled,
		OrderStatusRefunded,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transition is permitted from the
// given status.
func IsTerminalStatus(status string) bool {
	switch status {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded, OrderStatusDisputed:
		return true
	}
	return false
}

// transitionRule names the roles allowed to request a given target status.
type transitionRule struct {
	target string
	roles  []Role
}

// transitionTable defines every permitted transition and who may request it.
var transitionTable = map[string][]transitionRule{
	OrderStatusCreated: {
		{target: OrderStatusFunded, roles: []Role{RoleBuyer}},
		{target: OrderStatusCancelled, roles: []Role{RoleBuyer}},
	},
	OrderStatusFunded: {
		{target: OrderStatusShipped, roles: []Role{RoleSeller}},
		{target: OrderStatusCancelled, roles: []Role{RoleBuyer, RoleSeller}},
	},
	OrderStatusShipped: {
		{target: OrderStatusCompleted, roles: []Role{RoleBuyer}},
		{target: OrderStatusDisputed, roles: []Role{RoleBuyer}},
	},
	OrderStatusCompleted: {},
	OrderStatusDisputed:  {},
	OrderStatusCancelled: {},
	OrderStatusRefunded:  {},
}

// CanTransition validates a requested status transition for the given role.
// It is a pure function with no side effects: it checks the transition table
// and the tracking-number requirement for SHIPPED, and returns nil when the
// transition is allowed.
func CanTransition(current, requested string, role Role, trackingNumber string) error {
	rules, ok := transitionTable[current]
	if !ok {
		return apperrors.InvalidTransition(current, requested)
	}

	for _, rule := range rules {
		if rule.target != requested {
			continue
		}
		for _, r := range rule.roles {
			if r == role {
				if requested == OrderStatusShipped && trackingNumber == "" {
					return apperrors.MissingTrackingNumber()
				}
				return nil
			}
		}
		return apperrors.Forbidden("role " + string(role) + " may not move order from " + current + " to " + requested)
	}

	return apperrors.InvalidTransition(current, requested)
}

// AllowedTargets lists the statuses reachable from the given status for the
// given role. Used to include actionable detail in transition errors.
func AllowedTargets(current string, role Role) []string {
	var targets []string
	for _, rule := range transitionTable[current] {
		for _, r := range rule.roles {
			if r == role {
				targets = append(targets, rule.target)
				break
			}
		}
	}
	return targets
}
