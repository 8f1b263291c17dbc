package contracts

import (
	"fmt"
	"strings"
)

// RestrictionStatus signals whether brokers curtail new hedge positions
type RestrictionStatus string

const (
	RestrictionNone    RestrictionStatus = "none"
	RestrictionCaution RestrictionStatus = "caution" // 注意
	RestrictionHalted  RestrictionStatus = "halted"  // 停止
)

// ParseRestriction maps the verbatim categorical field to a status.
// Unknown or empty values are treated as no restriction.
func ParseRestriction(raw string) RestrictionStatus {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return RestrictionNone
	case strings.Contains(s, "停止"), strings.EqualFold(s, string(RestrictionHalted)):
		return RestrictionHalted
	case strings.Contains(s, "注意"), strings.EqualFold(s, string(RestrictionCaution)):
		return RestrictionCaution
	default:
		return RestrictionNone
	}
}

// UnmarshalText validates the status on decode
func (s *RestrictionStatus) UnmarshalText(text []byte) error {
	switch v := RestrictionStatus(text); v {
	case RestrictionNone, RestrictionCaution, RestrictionHalted:
		*s = v
		return nil
	case "":
		*s = RestrictionNone
		return nil
	default:
		return fmt.Errorf("unknown restriction status %q", string(text))
	}
}

// AuxiliarySignals are the per-security adjustments joined from inventory
// ⭐ SSOT: Signal Joiner → Performance Calculator 전달
type AuxiliarySignals struct {
	Code                string            `json:"code"`
	AverageCarryingCost float64           `json:"average_carrying_cost"` // 0 = term skipped
	DividendPerShare    float64           `json:"dividend_per_share"`
	Restriction         RestrictionStatus `json:"restriction"`
	MaxCarryingCost     *int64            `json:"max_carrying_cost,omitempty"`
}

// SourceTier tags where a price came from
type SourceTier string

const (
	TierLive     SourceTier = "live"
	TierFallback SourceTier = "fallback"
)

// PriceQuote is a resolved price for one security
type PriceQuote struct {
	Code  string     `json:"code"`
	Price float64    `json:"price"`
	Tier  SourceTier `json:"tier"`
}
