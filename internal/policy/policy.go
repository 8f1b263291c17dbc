package policy

import "fmt"

// HaltedPolicy decides what happens to entries whose restriction is halted
type HaltedPolicy string

const (
	// HaltedFlag computes and keeps halted entries with Halted=true
	HaltedFlag HaltedPolicy = "flag"
	// HaltedExclude drops halted entries from the ranking
	HaltedExclude HaltedPolicy = "exclude"
)

// Broker maps a payload availability field to a broker id
type Broker struct {
	Field string `yaml:"field" json:"field"`
	ID    string `yaml:"id" json:"id"`
}

// Policy holds the named policy constants of the ranking engine.
// ⭐ SSOT: 정책 상수는 여기서만
type Policy struct {
	// Dividend multiplier for a shorted position: 20.315% withholding
	// minus the 5% local part refunded as dividend adjustment.
	DividendAdjustmentRate float64 `yaml:"dividend_adjustment_rate" json:"dividend_adjustment_rate"`

	// Annual margin interest rate in percent, charged on the long leg
	// for every month end the position crosses
	InterestRate float64 `yaml:"interest_rate" json:"interest_rate"`

	// Window, in years, of the averaged carrying cost, and the payload field holding it
	CarryingCostWindowYears int    `yaml:"carrying_cost_window_years" json:"carrying_cost_window_years"`
	CarryingCostField       string `yaml:"carrying_cost_field" json:"carrying_cost_field"`

	// Values at or above this are timestamps, not share counts
	ShareCountCeiling int64 `yaml:"share_count_ceiling" json:"share_count_ceiling"`

	// Code of the placeholder record heading every batch
	SentinelCode string `yaml:"sentinel_code" json:"sentinel_code"`

	HaltedPolicy HaltedPolicy `yaml:"halted_policy" json:"halted_policy"`

	// Decimal places kept in the metric
	MetricPrecision int32 `yaml:"metric_precision" json:"metric_precision"`

	// Broker whose inventory counts for "in stock" in the monthly summary
	PrimaryBroker string `yaml:"primary_broker" json:"primary_broker"`

	Brokers []Broker `yaml:"brokers" json:"brokers"`
}

// Default returns the policy used when no policy file is configured
func Default() *Policy {
	return &Policy{
		DividendAdjustmentRate:  0.15315,
		InterestRate:            1.7,
		CarryingCostWindowYears: 5,
		CarryingCostField:       "avg5_gyaku",
		ShareCountCeiling:       100_000_000,
		SentinelCode:            "0000",
		HaltedPolicy:            HaltedFlag,
		MetricPrecision:         8,
		PrimaryBroker:           "nikko",
		Brokers: []Broker{
			{Field: "nvol", ID: "nikko"},
			{Field: "kvol", ID: "kabucom"},
			{Field: "rvol", ID: "rakuten"},
			{Field: "svol", ID: "sbi"},
			{Field: "gvol", ID: "gmo"},
			{Field: "mvol", ID: "matsui"},
			{Field: "xvol", ID: "monex"},
		},
	}
}

// BrokerIDs returns broker ids in policy order
func (p *Policy) BrokerIDs() []string {
	ids := make([]string, len(p.Brokers))
	for i, b := range p.Brokers {
		ids[i] = b.ID
	}
	return ids
}

// HasBroker reports whether id is a configured broker
func (p *Policy) HasBroker(id string) bool {
	for _, b := range p.Brokers {
		if b.ID == id {
			return true
		}
	}
	return false
}

// String summarizes the policy for status output
func (p *Policy) String() string {
	return fmt.Sprintf("dividend_rate=%g interest=%g%% cost_field=%s(%dy) ceiling=%d halted=%s precision=%d",
		p.DividendAdjustmentRate, p.InterestRate, p.CarryingCostField, p.CarryingCostWindowYears,
		p.ShareCountCeiling, p.HaltedPolicy, p.MetricPrecision)
}
