package policy

import "fmt"

// ValidationError 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(p *Policy) error {
	if p.DividendAdjustmentRate < 0 || p.DividendAdjustmentRate > 1 {
		return ValidationError{"dividend_adjustment_rate", "must be in [0, 1]"}
	}
	if p.InterestRate < 0 || p.InterestRate > 100 {
		return ValidationError{"interest_rate", "must be in [0, 100]"}
	}
	if p.CarryingCostWindowYears <= 0 {
		return ValidationError{"carrying_cost_window_years", "must be > 0"}
	}
	if p.CarryingCostField == "" {
		return ValidationError{"carrying_cost_field", "required"}
	}
	if p.ShareCountCeiling <= 0 {
		return ValidationError{"share_count_ceiling", "must be > 0"}
	}
	if p.SentinelCode == "" {
		return ValidationError{"sentinel_code", "required"}
	}
	switch p.HaltedPolicy {
	case HaltedFlag, HaltedExclude:
	default:
		return ValidationError{"halted_policy", fmt.Sprintf("must be %q or %q", HaltedFlag, HaltedExclude)}
	}
	if p.MetricPrecision < 0 || p.MetricPrecision > 16 {
		return ValidationError{"metric_precision", "must be in [0, 16]"}
	}
	if len(p.Brokers) == 0 {
		return ValidationError{"brokers", "at least one broker required"}
	}

	fields := make(map[string]bool, len(p.Brokers))
	ids := make(map[string]bool, len(p.Brokers))
	for i, b := range p.Brokers {
		if b.Field == "" || b.ID == "" {
			return ValidationError{fmt.Sprintf("brokers[%d]", i), "field and id required"}
		}
		if fields[b.Field] {
			return ValidationError{fmt.Sprintf("brokers[%d].field", i), "duplicate " + b.Field}
		}
		if ids[b.ID] {
			return ValidationError{fmt.Sprintf("brokers[%d].id", i), "duplicate " + b.ID}
		}
		fields[b.Field] = true
		ids[b.ID] = true
	}

	if p.PrimaryBroker != "" && !ids[p.PrimaryBroker] {
		return ValidationError{"primary_broker", "not among brokers: " + p.PrimaryBroker}
	}

	return nil
}
