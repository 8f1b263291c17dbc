package contracts

import "sort"

// PerformanceEntry is the computed metric for one security-lot in one month.
// Derived on every run and never treated as authoritative.
// ⭐ SSOT: Performance Calculator → Ranking Builder 전달
type PerformanceEntry struct {
	Rank         int               `json:"rank"` // 1-based, set by the ranking builder
	Code         string            `json:"code"`
	Name         string            `json:"name,omitempty"`
	Month        int               `json:"month"`
	LotSize      int64             `json:"lot_size"`
	Differential bool              `json:"differential"`
	Metric       float64           `json:"metric_percentage"`
	Restriction  RestrictionStatus `json:"restriction"`
	Halted       bool              `json:"halted"`

	// Inputs and breakdown
	Price               float64    `json:"price"`
	PriceTier           SourceTier `json:"price_tier"`
	BenefitValue        float64    `json:"benefit_value"`
	AverageCarryingCost float64    `json:"average_carrying_cost"`
	DividendPerShare    float64    `json:"dividend_per_share"`
	PerShareBenefit     float64    `json:"per_share_benefit"`
	DividendBenefit     float64    `json:"dividend_benefit"`
	NetBenefitPerShare  float64    `json:"net_benefit_per_share"`
	SimpleYield         float64    `json:"simple_yield"`
	MonthlyYield        float64    `json:"monthly_yield"`             // simple yield net of margin interest, per month held
	MonthsToCross       int        `json:"months_to_cross,omitempty"` // month ends until the settlement month, 0 when not computed
	RequiredAmount      float64    `json:"required_amount"`
	MaxCarryingCostRate *float64   `json:"max_carrying_cost_rate,omitempty"`

	// Presentation only, copied from inventory
	Availability map[string]int64 `json:"availability,omitempty"`
	Content      string           `json:"content,omitempty"`
}

// Ranking is the ordered result set of one month
type Ranking struct {
	Month   int                `json:"month"`
	Entries []PerformanceEntry `json:"entries"`
}

// Top returns the first n entries (all when n <= 0)
func (r *Ranking) Top(n int) []PerformanceEntry {
	if n <= 0 || n >= len(r.Entries) {
		return r.Entries
	}
	return r.Entries[:n]
}

// Filter returns a ranking holding the entries matching keep.
// Ranks are left as assigned so gaps show what was filtered out.
func (r *Ranking) Filter(keep func(PerformanceEntry) bool) *Ranking {
	out := &Ranking{Month: r.Month, Entries: make([]PerformanceEntry, 0, len(r.Entries))}
	for _, e := range r.Entries {
		if keep(e) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// ByMonthlyYield returns the entries reordered by monthly yield, highest first.
// Ties keep ranking order; ranks are left as assigned.
func (r *Ranking) ByMonthlyYield() *Ranking {
	out := &Ranking{Month: r.Month, Entries: make([]PerformanceEntry, len(r.Entries))}
	copy(out.Entries, r.Entries)
	sort.SliceStable(out.Entries, func(i, j int) bool {
		return out.Entries[i].MonthlyYield > out.Entries[j].MonthlyYield
	})
	return out
}

// InStock reports positive availability at the broker
func (e *PerformanceEntry) InStock(broker string) bool {
	return e.Availability[broker] > 0
}
