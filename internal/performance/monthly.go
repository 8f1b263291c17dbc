package performance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/policy"
)

var twelve = decimal.NewFromInt(12)

// MonthsToCross counts the month ends from asOf up to and including the
// settlement month's. A settlement month earlier than asOf's is next year's.
func MonthsToCross(month int, asOf time.Time) int {
	current := int(asOf.Month())
	if month >= current {
		return month - current + 1
	}
	return 12 - current + month + 1
}

// ApplyMonthlyYield sets the monthly yield of a computed entry:
//
//	(benefit/lot - price*interestRate/100*months/12) / price * 100 / months
//
// Margin interest grows with every month end held, so the same benefit
// ranks lower the earlier the position is opened. Entries without a
// positive benefit keep a zero yield.
// ⭐ SSOT: 월 이율 공식은 여기서만
func ApplyMonthlyYield(e *contracts.PerformanceEntry, months int, p *policy.Policy) {
	if months <= 0 || e.LotSize <= 0 || e.Price <= 0 {
		return
	}
	e.MonthsToCross = months
	if e.BenefitValue <= 0 {
		e.MonthlyYield = 0
		return
	}

	m := decimal.NewFromInt(int64(months))
	price := decimal.NewFromFloat(e.Price)
	perShare := decimal.NewFromFloat(e.BenefitValue).Div(decimal.NewFromInt(e.LotSize))
	interest := price.Mul(decimal.NewFromFloat(p.InterestRate)).Div(hundred).Mul(m).Div(twelve)

	e.MonthlyYield = round(perShare.Sub(interest).Div(price).Mul(hundred).Div(m), p.MetricPrecision)
}
