package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrHoldingNotFound is returned when a holding id exists neither
// remotely nor in the local mirror.
var ErrHoldingNotFound = errors.New("holding not found")

// Holding is one recorded purchase lot of a cryptocurrency asset.
// ID is assigned at creation time and immutable thereafter. The same
// coin may appear in multiple holdings; lots are never merged.
type Holding struct {
	ID            string  `json:"id"`
	CoinID        string  `json:"coinId"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Image         string  `json:"image"`
	Amount        float64 `json:"amount"`
	PurchasePrice float64 `json:"purchasePrice"`
	PurchaseDate  string  `json:"purchaseDate"` // ISO date, e.g. "2024-01-01"
}

// Validate checks the fields a caller submits when creating a holding.
func (h *Holding) Validate() error {
	if h.CoinID == "" {
		return fmt.Errorf("coinId is required")
	}
	if h.Amount <= 0 {
		return fmt.Errorf("amount must be a positive number")
	}
	if h.PurchasePrice < 0 {
		return fmt.Errorf("purchasePrice must not be negative")
	}
	if h.PurchaseDate != "" {
		date, err := time.Parse("2006-01-02", h.PurchaseDate)
		if err != nil {
			return fmt.Errorf("purchaseDate must be an ISO date: %w", err)
		}
		if date.After(time.Now()) {
			return fmt.Errorf("purchaseDate must not be in the future")
		}
	}
	return nil
}

// HoldingUpdate is a partial update; nil fields are left unchanged.
type HoldingUpdate struct {
	CoinID        *string  `json:"coinId,omitempty"`
	Name          *string  `json:"name,omitempty"`
	Symbol        *string  `json:"symbol,omitempty"`
	Image         *string  `json:"image,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	PurchasePrice *float64 `json:"purchasePrice,omitempty"`
	PurchaseDate  *string  `json:"purchaseDate,omitempty"`
}

// Apply merges the set fields into h. The holding ID is never touched.
func (u *HoldingUpdate) Apply(h *Holding) {
	if u.CoinID != nil {
		h.CoinID = *u.CoinID
	}
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.Symbol != nil {
		h.Symbol = *u.Symbol
	}
	if u.Image != nil {
		h.Image = *u.Image
	}
	if u.Amount != nil {
		h.Amount = *u.Amount
	}
	if u.PurchasePrice != nil {
		h.PurchasePrice = *u.PurchasePrice
	}
	if u.PurchaseDate != nil {
		h.PurchaseDate = *u.PurchaseDate
	}
}

// EnrichedHolding is a holding joined with a live market price. The
// derived fields are recomputed on every enrichment and never stored.
type EnrichedHolding struct {
	Holding
	CurrentPrice     float64 `json:"currentPrice"`
	TotalValue       float64 `json:"totalValue"`
	Profit           float64 `json:"profit"`
	ProfitPercentage float64 `json:"profitPercentage"`
}

// Enrich computes the valuation of a holding at the given price.
// A zero cost basis yields a zero profit percentage.
func Enrich(h Holding, currentPrice float64) EnrichedHolding {
	totalValue := currentPrice * h.Amount
	cost := h.PurchasePrice * h.Amount
	profit := totalValue - cost

	profitPercentage := 0.0
	if cost > 0 {
		profitPercentage = (profit / cost) * 100
	}

	return EnrichedHolding{
		Holding:          h,
		CurrentPrice:     currentPrice,
		TotalValue:       totalValue,
		Profit:           profit,
		ProfitPercentage: profitPercentage,
	}
}

// DistinctCoinIDs returns the unique coin ids across holdings in
// first-seen order.
func DistinctCoinIDs(holdings []Holding) []string {
	seen := make(map[string]bool, len(holdings))
	ids := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if !seen[h.CoinID] {
			seen[h.CoinID] = true
			ids = append(ids, h.CoinID)
		}
	}
	return ids
}
