package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/policy"
)

func entry(lot int64, value float64) contracts.ValueMasterEntry {
	return contracts.ValueMasterEntry{Code: "1234", Name: "Alpha", Month: 3, LotSize: lot, BenefitValue: value}
}

func TestCalculate_WorkedExample(t *testing.T) {
	got, err := Calculate(
		entry(100, 10000),
		contracts.PriceQuote{Code: "1234", Price: 1500, Tier: contracts.TierLive},
		contracts.AuxiliarySignals{Code: "1234", AverageCarryingCost: 50, DividendPerShare: 20, Restriction: contracts.RestrictionNone},
		policy.Default(),
	)
	require.NoError(t, err)

	// (100 - 50 + 3.063) / 1500 * 100
	assert.InDelta(t, 3.5375, got.Metric, 0.0001)
	assert.Equal(t, 3.53753333, got.Metric)

	assert.Equal(t, 100.0, got.PerShareBenefit)
	assert.Equal(t, 3.063, got.DividendBenefit)
	assert.Equal(t, 53.063, got.NetBenefitPerShare)
	assert.Equal(t, 6.66666667, got.SimpleYield)
	assert.Equal(t, 150000.0, got.RequiredAmount)
	assert.Equal(t, contracts.TierLive, got.PriceTier)
	assert.False(t, got.Halted)
	assert.Nil(t, got.MaxCarryingCostRate)
}

func TestCalculate_Errors(t *testing.T) {
	aux := contracts.AuxiliarySignals{Code: "1234"}

	_, err := Calculate(entry(100, 1000), contracts.PriceQuote{Price: 0}, aux, policy.Default())
	assert.ErrorIs(t, err, ErrZeroPrice)

	_, err = Calculate(entry(100, 1000), contracts.PriceQuote{Price: -5}, aux, policy.Default())
	assert.ErrorIs(t, err, ErrZeroPrice)

	_, err = Calculate(entry(0, 1000), contracts.PriceQuote{Price: 100}, aux, policy.Default())
	assert.ErrorIs(t, err, ErrInvalidLotSize)
}

func TestCalculate_HaltedIsComputedAndFlagged(t *testing.T) {
	got, err := Calculate(
		entry(100, 3000),
		contracts.PriceQuote{Price: 1000, Tier: contracts.TierFallback},
		contracts.AuxiliarySignals{Restriction: contracts.RestrictionHalted},
		policy.Default(),
	)
	require.NoError(t, err)
	assert.True(t, got.Halted)
	assert.Equal(t, 3.0, got.Metric)
}

func TestCalculate_NegativeMetric(t *testing.T) {
	got, err := Calculate(
		entry(100, 1000),
		contracts.PriceQuote{Price: 1000},
		contracts.AuxiliarySignals{AverageCarryingCost: 30},
		policy.Default(),
	)
	require.NoError(t, err)
	// (10 - 30) / 1000 * 100
	assert.Equal(t, -2.0, got.Metric)
}

func TestCalculate_NegativeSignalsUsedVerbatim(t *testing.T) {
	got, err := Calculate(
		entry(100, 1000),
		contracts.PriceQuote{Price: 1000},
		contracts.AuxiliarySignals{AverageCarryingCost: -3, DividendPerShare: -10},
		policy.Default(),
	)
	require.NoError(t, err)
	// (10 + 3 - 10*0.15315) / 1000 * 100
	assert.Equal(t, 1.14685, got.Metric)
	assert.Equal(t, -3.0, got.AverageCarryingCost)
}

func TestCalculate_MaxCarryingCostRate(t *testing.T) {
	maxCost := int64(2400)
	got, err := Calculate(
		entry(100, 3000),
		contracts.PriceQuote{Price: 1200},
		contracts.AuxiliarySignals{MaxCarryingCost: &maxCost},
		policy.Default(),
	)
	require.NoError(t, err)
	require.NotNil(t, got.MaxCarryingCostRate)
	// 2400 / 100 / 1200 * 100
	assert.Equal(t, 2.0, *got.MaxCarryingCostRate)
}

func TestCalculate_PolicyRate(t *testing.T) {
	p := policy.Default()
	p.DividendAdjustmentRate = 0

	got, err := Calculate(
		entry(100, 10000),
		contracts.PriceQuote{Price: 1000},
		contracts.AuxiliarySignals{DividendPerShare: 50},
		p,
	)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Metric)
	assert.Equal(t, 0.0, got.DividendBenefit)
}

func TestCalculate_Deterministic(t *testing.T) {
	aux := contracts.AuxiliarySignals{AverageCarryingCost: 1.37, DividendPerShare: 33.3}
	first, err := Calculate(entry(300, 7777), contracts.PriceQuote{Price: 2345.6}, aux, policy.Default())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := Calculate(entry(300, 7777), contracts.PriceQuote{Price: 2345.6}, aux, policy.Default())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMonthsToCross(t *testing.T) {
	tests := []struct {
		name  string
		month int
		asOf  time.Time
		want  int
	}{
		{"same month", 3, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), 1},
		{"next month", 3, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 2},
		{"later this year", 12, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 12},
		{"next year", 3, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 12},
		{"december to january", 1, time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthsToCross(tt.month, tt.asOf))
		})
	}
}

func TestApplyMonthlyYield(t *testing.T) {
	got, err := Calculate(
		entry(100, 10000),
		contracts.PriceQuote{Price: 1500, Tier: contracts.TierLive},
		contracts.AuxiliarySignals{AverageCarryingCost: 50, DividendPerShare: 20},
		policy.Default(),
	)
	require.NoError(t, err)

	// (100 - 1500*0.017*2/12) / 1500 * 100 / 2 = 95.75 / 15 / 2
	ApplyMonthlyYield(&got, 2, policy.Default())
	assert.Equal(t, 2, got.MonthsToCross)
	assert.Equal(t, 3.19166667, got.MonthlyYield)

	// one month: (100 - 2.125) / 15
	ApplyMonthlyYield(&got, 1, policy.Default())
	assert.Equal(t, 6.525, got.MonthlyYield)

	// the hedge metric is untouched
	assert.Equal(t, 3.53753333, got.Metric)
}

func TestApplyMonthlyYield_Skipped(t *testing.T) {
	e := contracts.PerformanceEntry{LotSize: 100, Price: 1000, BenefitValue: 5000}
	ApplyMonthlyYield(&e, 0, policy.Default())
	assert.Zero(t, e.MonthsToCross)
	assert.Zero(t, e.MonthlyYield)

	noBenefit := contracts.PerformanceEntry{LotSize: 100, Price: 1000}
	ApplyMonthlyYield(&noBenefit, 3, policy.Default())
	assert.Equal(t, 3, noBenefit.MonthsToCross)
	assert.Zero(t, noBenefit.MonthlyYield)
}
