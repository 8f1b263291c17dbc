package contracts

// RawRecord is one decoded field-mapping of the inventory source, verbatim.
// Values are whatever the JSON decoder produced (string, float64, json.Number, nil).
type RawRecord map[string]interface{}

// RawPayload is one month's inventory response in source order.
// Element 0 is always the reserved sentinel.
type RawPayload []RawRecord

// InventoryRecord is the normalized inventory of one security for one month
// ⭐ SSOT: Inventory Normalizer → Signal Joiner / Price Resolver 전달
type InventoryRecord struct {
	Code  string `json:"code"`
	Name  string `json:"name,omitempty"`
	Month int    `json:"month"`

	// broker id → available shares, only validated counts
	Availability map[string]int64 `json:"availability"`

	Details RecordDetails `json:"details"`
}

// RecordDetails keeps the non-broker fields consumed downstream.
// Nil pointers mean the field was absent or unusable in the payload.
type RecordDetails struct {
	Price               *float64 `json:"price,omitempty"`                 // 株価
	Dividend            *float64 `json:"dividend,omitempty"`              // 配当 per share
	AverageCarryingCost *float64 `json:"average_carrying_cost,omitempty"` // 逆日歩 multi-year average per share
	MaxCarryingCost     *int64   `json:"max_carrying_cost,omitempty"`     // 最大逆日歩 per lot
	RequiredShares      *int64   `json:"required_shares,omitempty"`       // source's own lot
	Restriction         string   `json:"restriction,omitempty"`           // verbatim categorical
	MarginLabel         string   `json:"margin_label,omitempty"`          // 貸借 / 信用
	BenefitContent      string   `json:"benefit_content,omitempty"`
}

// Available returns the share count for a broker and whether it was reported
func (r *InventoryRecord) Available(broker string) (int64, bool) {
	v, ok := r.Availability[broker]
	return v, ok
}

// InStock reports positive availability at the broker
func (r *InventoryRecord) InStock(broker string) bool {
	v, ok := r.Available(broker)
	return ok && v > 0
}

// ValueMasterEntry is one curated row of the benefit value table
// ⭐ SSOT: 優待価値 master, edited by hand between runs
type ValueMasterEntry struct {
	Code         string  `json:"code"`
	Name         string  `json:"name,omitempty"`
	Month        int     `json:"month"`         // settlement month 1-12
	LotSize      int64   `json:"lot_size"`      // shares required for the benefit
	BenefitValue float64 `json:"benefit_value"` // cash equivalent of the benefit
	Content      string  `json:"content,omitempty"`
	Differential bool    `json:"differential"` // "+N" row: extra lot on top of a base lot
	Row          int     `json:"row"`          // 1-based data row in the source file
}
