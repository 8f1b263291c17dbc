package performance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/policy"
)

var (
	// ErrZeroPrice means the resolved price cannot divide the metric
	ErrZeroPrice = errors.New("price must be positive")
	// ErrInvalidLotSize means the master entry has no positive lot
	ErrInvalidLotSize = errors.New("lot size must be positive")
)

var hundred = decimal.NewFromInt(100)

// Calculate computes the hedge performance of one security-lot:
//
//	(benefit/lot - avgCarryingCost + dividend*rate) / price * 100
//
// Arithmetic runs in decimal and every output is rounded to the policy
// precision, so the same inputs give the same bytes on every run.
// ⭐ SSOT: 성과 지표 공식은 여기서만
func Calculate(
	entry contracts.ValueMasterEntry,
	quote contracts.PriceQuote,
	aux contracts.AuxiliarySignals,
	p *policy.Policy,
) (contracts.PerformanceEntry, error) {
	if entry.LotSize <= 0 {
		return contracts.PerformanceEntry{}, fmt.Errorf("%s/%d: %w", entry.Code, entry.LotSize, ErrInvalidLotSize)
	}
	if quote.Price <= 0 {
		return contracts.PerformanceEntry{}, fmt.Errorf("%s/%d: %w", entry.Code, entry.LotSize, ErrZeroPrice)
	}

	places := p.MetricPrecision
	lot := decimal.NewFromInt(entry.LotSize)
	price := decimal.NewFromFloat(quote.Price)
	benefit := decimal.NewFromFloat(entry.BenefitValue)
	cost := decimal.NewFromFloat(aux.AverageCarryingCost)
	dividend := decimal.NewFromFloat(aux.DividendPerShare)
	rate := decimal.NewFromFloat(p.DividendAdjustmentRate)

	perShare := benefit.Div(lot)
	dividendBenefit := dividend.Mul(rate)
	net := perShare.Sub(cost).Add(dividendBenefit)
	metric := net.Div(price).Mul(hundred)
	simpleYield := perShare.Div(price).Mul(hundred)

	out := contracts.PerformanceEntry{
		Code:                entry.Code,
		Name:                entry.Name,
		Month:               entry.Month,
		LotSize:             entry.LotSize,
		Differential:        entry.Differential,
		Metric:              round(metric, places),
		Restriction:         aux.Restriction,
		Halted:              aux.Restriction == contracts.RestrictionHalted,
		Price:               quote.Price,
		PriceTier:           quote.Tier,
		BenefitValue:        entry.BenefitValue,
		AverageCarryingCost: aux.AverageCarryingCost,
		DividendPerShare:    aux.DividendPerShare,
		PerShareBenefit:     round(perShare, places),
		DividendBenefit:     round(dividendBenefit, places),
		NetBenefitPerShare:  round(net, places),
		SimpleYield:         round(simpleYield, places),
		RequiredAmount:      round(price.Mul(lot), places),
		Content:             entry.Content,
	}

	// 最大逆日歩 is per lot in yen
	if aux.MaxCarryingCost != nil {
		maxRate := round(decimal.NewFromInt(*aux.MaxCarryingCost).Div(lot).Div(price).Mul(hundred), places)
		out.MaxCarryingCostRate = &maxRate
	}

	return out, nil
}

func round(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
