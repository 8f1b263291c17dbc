package pricing

import (
	"errors"
	"math"

	"github.com/wonny/yuutai/internal/contracts"
)

// ErrMissingPrice means neither a live quote nor an inventory price is usable
var ErrMissingPrice = errors.New("no usable price")

// QuoteBook holds live quotes fetched before the run, by code
type QuoteBook map[string]float64

// Usable reports whether a price can divide the metric
func Usable(price float64) bool {
	return price > 0 && !math.IsNaN(price) && !math.IsInf(price, 0)
}

// Resolver picks the price of a security from an ordered list of sources
// ⭐ SSOT: 가격 우선순위 (live → inventory fallback)
type Resolver struct {
	quotes QuoteBook
}

// NewResolver creates a resolver over prefetched quotes; nil means no live tier
func NewResolver(quotes QuoteBook) *Resolver {
	if quotes == nil {
		quotes = QuoteBook{}
	}
	return &Resolver{quotes: quotes}
}

// Resolve returns the live quote when usable, else the inventory price.
// It never blocks: live quotes were fetched at the boundary.
func (r *Resolver) Resolve(code string, record *contracts.InventoryRecord) (contracts.PriceQuote, error) {
	if p, ok := r.quotes[code]; ok && Usable(p) {
		return contracts.PriceQuote{Code: code, Price: p, Tier: contracts.TierLive}, nil
	}

	if record != nil && record.Details.Price != nil && Usable(*record.Details.Price) {
		return contracts.PriceQuote{Code: code, Price: *record.Details.Price, Tier: contracts.TierFallback}, nil
	}

	return contracts.PriceQuote{Code: code}, ErrMissingPrice
}
