// Package models defines data structures for Coinfolio
package models

import (
	"encoding/json"
	"fmt"
)

// Coin is a minimal coin identity as returned by the coin list endpoint.
type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// MarketCoin is one row of the paginated market snapshot.
type MarketCoin struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	MarketCap                float64 `json:"market_cap"`
	MarketCapRank            int     `json:"market_cap_rank"`
	TotalVolume              float64 `json:"total_volume"`
	High24h                  float64 `json:"high_24h"`
	Low24h                   float64 `json:"low_24h"`
	PriceChange24h           float64 `json:"price_change_24h"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	CirculatingSupply        float64 `json:"circulating_supply"`
	ATH                      float64 `json:"ath"`
	ATL                      float64 `json:"atl"`
	LastUpdated              string  `json:"last_updated"`
}

// CoinDetail is the per-coin detail response (no localization, no tickers).
type CoinDetail struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage     []string `json:"homepage"`
		SubredditURL string   `json:"subreddit_url"`
	} `json:"links"`
	Image struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		High24h                  map[string]float64 `json:"high_24h"`
		Low24h                   map[string]float64 `json:"low_24h"`
		PriceChange24h           float64            `json:"price_change_24h"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
		CirculatingSupply        float64            `json:"circulating_supply"`
		ATH                      map[string]float64 `json:"ath"`
	} `json:"market_data"`
}

// PricePoint is one [timestamp, price] pair from a market chart.
// The upstream API encodes it as a two-element JSON array in
// chronological ascending order; points are neither reordered nor
// deduplicated here.
type PricePoint struct {
	Timestamp int64
	Price     float64
}

// UnmarshalJSON decodes the upstream [timestampMs, price] tuple.
func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var raw [2]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("price point must be a [timestamp, price] pair: %w", err)
	}
	p.Timestamp = int64(raw[0])
	p.Price = raw[1]
	return nil
}

// MarshalJSON encodes the point back into tuple form.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Timestamp), p.Price})
}

// MarketChart holds historical series for a coin over a day-count window.
type MarketChart struct {
	Prices       []PricePoint `json:"prices"`
	MarketCaps   []PricePoint `json:"market_caps"`
	TotalVolumes []PricePoint `json:"total_volumes"`
}

// SimplePrices maps coin id -> quote currency -> price.
type SimplePrices map[string]map[string]float64

// Price returns the price for a coin in a currency, or 0 when the coin
// is absent from the response. A zero therefore means either "price is
// zero" or "price unavailable" -- callers that need the distinction
// should check presence themselves.
func (p SimplePrices) Price(coinID, currency string) float64 {
	if quotes, ok := p[coinID]; ok {
		return quotes[currency]
	}
	return 0
}
