package signals

import (
	"github.com/wonny/yuutai/internal/contracts"
)

// Joiner attaches auxiliary signals to a security.
// Absent signals default to neutral values; they never drop the entry.
// ⭐ SSOT: 보조 신호 결합은 여기서만
type Joiner struct {
	maxCosts map[string]*int64
}

// NewJoiner creates a joiner. maxCosts is the scraped max carrying cost
// table used when the inventory payload lacks one; it may be nil.
func NewJoiner(maxCosts map[string]*int64) *Joiner {
	return &Joiner{maxCosts: maxCosts}
}

// Join is a convenience wrapper without a scraped max cost table
func Join(code string, record *contracts.InventoryRecord) contracts.AuxiliarySignals {
	return NewJoiner(nil).Join(code, record)
}

// Join builds the signals of code from its inventory record (nil allowed)
func (j *Joiner) Join(code string, record *contracts.InventoryRecord) contracts.AuxiliarySignals {
	aux := contracts.AuxiliarySignals{
		Code:        code,
		Restriction: contracts.RestrictionNone,
	}

	if record != nil {
		// values are taken as published, negatives included
		d := record.Details
		if d.Dividend != nil {
			aux.DividendPerShare = *d.Dividend
		}
		if d.AverageCarryingCost != nil {
			aux.AverageCarryingCost = *d.AverageCarryingCost
		}
		aux.Restriction = contracts.ParseRestriction(d.Restriction)
		if d.MaxCarryingCost != nil {
			v := *d.MaxCarryingCost
			aux.MaxCarryingCost = &v
		}
	}

	if aux.MaxCarryingCost == nil && j.maxCosts != nil {
		if v := j.maxCosts[code]; v != nil {
			c := *v
			aux.MaxCarryingCost = &c
		}
	}

	return aux
}
