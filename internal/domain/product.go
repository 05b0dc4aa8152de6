package domain

import "time"

// Product status constants.
const (
	ProductStatusActive  = "ACTIVE"
	ProductStatusSoldOut = "SOLD_OUT"
	ProductStatusRemoved = "REMOVED"
)

// Settlement currencies accepted by the escrow ledger.
const (
	CurrencySOL  = "SOL"
	CurrencyUSDC = "USDC"
	CurrencyUSDT = "USDT"
)

// Field length limits enforced on listings.
const (
	MaxTitleLen       = 50
	MaxDescriptionLen = 1000
	MaxCategoryLen    = 20
	MaxMetadataURILen = 200
)

// Product is a marketplace listing. Price is in the smallest unit of the
// listing currency (lamports for SOL, micro units for USDC/USDT).
type Product struct {
	ID           string    `json:"id"`
	SellerID     string    `json:"seller_id"`
	SellerWallet string    `json:"seller_wallet"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	MetadataURI  string    `json:"metadata_uri"`
	Price        int64     `json:"price"`
	Currency     string    `json:"currency"`
	Quantity     int64     `json:"quantity"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsValidCurrency checks if a currency code is accepted for settlement.
func IsValidCurrency(currency string) bool {
	switch currency {
	case CurrencySOL, CurrencyUSDC, CurrencyUSDT:
		return true
	}
	return false
}
