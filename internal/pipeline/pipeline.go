package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/inventory"
	"github.com/wonny/yuutai/internal/master"
	"github.com/wonny/yuutai/internal/performance"
	"github.com/wonny/yuutai/internal/policy"
	"github.com/wonny/yuutai/internal/pricing"
	"github.com/wonny/yuutai/internal/ranking"
	"github.com/wonny/yuutai/internal/signals"
	"github.com/wonny/yuutai/pkg/logger"
)

// FailureKind classifies a per-entry failure
type FailureKind string

const (
	FailureMissingPrice FailureKind = "missing_price"
	FailureArithmetic   FailureKind = "arithmetic"
	FailureInternal     FailureKind = "internal" // recovered panic
)

// Failure is one security-lot that could not be ranked
type Failure struct {
	Code    string      `json:"code"`
	LotSize int64       `json:"lot_size"`
	Kind    FailureKind `json:"kind"`
	Err     error       `json:"-"`
	Message string      `json:"message"`
}

// Input is everything one monthly run reads. All of it is already in memory.
type Input struct {
	Month    int
	Payload  contracts.RawPayload
	Master   *master.Index
	Quotes   pricing.QuoteBook // live tier, may be nil
	MaxCosts map[string]*int64 // scraped max carrying costs, may be nil
	Policy   *policy.Policy    // nil means policy.Default()
	Logger   *logger.Logger    // nil means no logging

	// AsOf is the reference time for the monthly yield. Zero leaves it
	// uncomputed, so the run stays a function of its inputs.
	AsOf time.Time
}

// Stats counts what happened to the inventory on the way to the ranking
type Stats struct {
	Inventory      int `json:"inventory"` // normalized records
	Matched        int `json:"matched"`   // master entries with inventory
	Unmatched      int `json:"unmatched"` // inventory codes not in master
	Ranked         int `json:"ranked"`
	Failed         int `json:"failed"`
	HaltedDropped  int `json:"halted_dropped"` // only with halted_policy=exclude
	LivePrices     int `json:"live_prices"`
	FallbackPrices int `json:"fallback_prices"`
}

// Result is the outcome of one run
type Result struct {
	RunID      string             `json:"run_id"`
	PolicyHash string             `json:"policy_hash"`
	Month      int                `json:"month"`
	Ranking    *contracts.Ranking `json:"ranking"`
	Failures   []Failure          `json:"failures"`
	Unmatched  []string           `json:"unmatched,omitempty"`
	Stats      Stats              `json:"stats"`
	Duration   time.Duration      `json:"-"`
}

// Run normalizes, gates, prices, computes and ranks one month.
// A failure in one entry never aborts the others.
// ⭐ SSOT: 월간 파이프라인 (정규화 → master 교집합 → 가격/신호 → 계산 → 랭킹)
func Run(in Input) (*Result, error) {
	if in.Month < 1 || in.Month > 12 {
		return nil, fmt.Errorf("invalid month %d", in.Month)
	}
	if in.Master == nil {
		return nil, errors.New("value master is required")
	}

	p := in.Policy
	if p == nil {
		p = policy.Default()
	}
	hash, err := policy.Hash(p)
	if err != nil {
		return nil, fmt.Errorf("hash policy: %w", err)
	}

	log := in.Logger
	if log == nil {
		log = logger.Nop()
	}

	start := time.Now()
	result := &Result{
		RunID:      uuid.NewString(),
		PolicyHash: hash,
		Month:      in.Month,
		Failures:   []Failure{},
	}
	log = log.WithModule("pipeline").WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"month":  in.Month,
	})

	// 1. 정규화
	records := inventory.NewNormalizer(p, log).Normalize(in.Payload, in.Month)
	byCode := inventory.Index(records)
	result.Stats.Inventory = len(records)

	// 2. master 교집합 (hard gate)
	gate := in.Master.Intersect(in.Month, inventory.Codes(records))
	result.Unmatched = gate.Unmatched
	result.Stats.Matched = len(gate.Matched)
	result.Stats.Unmatched = len(gate.Unmatched)
	if len(gate.Unmatched) > 0 {
		log.WithField("codes", gate.Unmatched).Debug("Inventory codes outside value master")
	}

	// 3. 가격/신호/계산
	resolver := pricing.NewResolver(in.Quotes)
	joiner := signals.NewJoiner(in.MaxCosts)
	entries := make([]contracts.PerformanceEntry, 0, len(gate.Matched))

	months := 0
	if !in.AsOf.IsZero() {
		months = performance.MonthsToCross(in.Month, in.AsOf)
	}

	for _, me := range gate.Matched {
		rec := byCode[me.Code]
		entry, failure := evaluate(me, &rec, resolver, joiner, p)
		if failure != nil {
			result.Failures = append(result.Failures, *failure)
			log.WithSecurity(me.Code, me.LotSize).
				WithField("kind", failure.Kind).
				WithError(failure.Err).
				Warn("Entry excluded from ranking")
			continue
		}

		performance.ApplyMonthlyYield(&entry, months, p)

		if entry.Halted && p.HaltedPolicy == policy.HaltedExclude {
			result.Stats.HaltedDropped++
			continue
		}

		switch entry.PriceTier {
		case contracts.TierLive:
			result.Stats.LivePrices++
		case contracts.TierFallback:
			result.Stats.FallbackPrices++
		}
		entries = append(entries, entry)
	}

	// 4. 랭킹
	result.Ranking = ranking.NewBuilder(log).Build(in.Month, entries)
	result.Stats.Ranked = len(result.Ranking.Entries)
	result.Stats.Failed = len(result.Failures)
	result.Duration = time.Since(start)

	log.WithFields(map[string]interface{}{
		"ranked":      result.Stats.Ranked,
		"failed":      result.Stats.Failed,
		"policy_hash": hash[:12],
		"duration":    result.Duration.String(),
	}).Info("Pipeline run completed")

	return result, nil
}

// evaluate computes one security-lot, turning any panic into a failure
func evaluate(
	me contracts.ValueMasterEntry,
	rec *contracts.InventoryRecord,
	resolver *pricing.Resolver,
	joiner *signals.Joiner,
	p *policy.Policy,
) (entry contracts.PerformanceEntry, failure *Failure) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			failure = newFailure(me, FailureInternal, err)
		}
	}()

	quote, err := resolver.Resolve(me.Code, rec)
	if err != nil {
		return entry, newFailure(me, FailureMissingPrice, err)
	}

	aux := joiner.Join(me.Code, rec)

	entry, err = performance.Calculate(me, quote, aux, p)
	if err != nil {
		kind := FailureArithmetic
		if errors.Is(err, performance.ErrZeroPrice) {
			kind = FailureMissingPrice
		}
		return entry, newFailure(me, kind, err)
	}

	if entry.Name == "" {
		entry.Name = rec.Name
	}
	if entry.Content == "" {
		entry.Content = rec.Details.BenefitContent
	}
	if len(rec.Availability) > 0 {
		entry.Availability = make(map[string]int64, len(rec.Availability))
		for k, v := range rec.Availability {
			entry.Availability[k] = v
		}
	}

	return entry, nil
}

func newFailure(me contracts.ValueMasterEntry, kind FailureKind, err error) *Failure {
	return &Failure{
		Code:    me.Code,
		LotSize: me.LotSize,
		Kind:    kind,
		Err:     err,
		Message: err.Error(),
	}
}
