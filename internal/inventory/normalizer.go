package inventory

import (
	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/policy"
	"github.com/wonny/yuutai/pkg/logger"
)

// Normalizer turns a raw monthly payload into inventory records
// ⭐ SSOT: 재고 정규화 로직은 여기서만
type Normalizer struct {
	policy *policy.Policy
	logger *logger.Logger
}

// NewNormalizer creates a normalizer for the given policy
func NewNormalizer(p *policy.Policy, log *logger.Logger) *Normalizer {
	return &Normalizer{
		policy: p,
		logger: log.WithModule("inventory"),
	}
}

// Normalize is a convenience wrapper without logging
func Normalize(payload contracts.RawPayload, month int, p *policy.Policy) []contracts.InventoryRecord {
	return NewNormalizer(p, logger.Nop()).Normalize(payload, month)
}

// IsShareCount reports whether v can be a share count under the ceiling.
// Larger values are timestamps the source leaks into count fields.
func IsShareCount(v, ceiling int64) bool {
	return v >= 0 && v < ceiling
}

// Normalize drops the leading sentinel and validates every broker field.
// Records never fail as a whole; bad fields are dropped one by one.
func (n *Normalizer) Normalize(payload contracts.RawPayload, month int) []contracts.InventoryRecord {
	if len(payload) <= 1 {
		return []contracts.InventoryRecord{}
	}
	// position 0 is the sentinel whatever it contains
	return n.normalize(payload[1:], month)
}

// NormalizeFeed normalizes the realtime feed. Its order is not fixed,
// so only records carrying the sentinel code are dropped. Month is 0
// because the feed spans every settlement month.
func (n *Normalizer) NormalizeFeed(payload contracts.RawPayload) []contracts.InventoryRecord {
	return n.normalize(payload, 0)
}

func (n *Normalizer) normalize(payload contracts.RawPayload, month int) []contracts.InventoryRecord {
	records := make([]contracts.InventoryRecord, 0, len(payload))
	droppedFields := 0
	skipped := 0

	for _, raw := range payload {
		code := parseText(raw[FieldCode])
		if code == "" || code == n.policy.SentinelCode {
			skipped++
			continue
		}

		rec := contracts.InventoryRecord{
			Code:         code,
			Name:         parseText(raw[FieldName]),
			Month:        month,
			Availability: make(map[string]int64, len(n.policy.Brokers)),
		}

		for _, b := range n.policy.Brokers {
			v, present := raw[b.Field]
			if !present || v == nil {
				continue
			}
			count, ok := parseCount(v)
			if !ok || !IsShareCount(count, n.policy.ShareCountCeiling) {
				droppedFields++
				continue
			}
			rec.Availability[b.ID] = count
		}

		rec.Details = n.details(raw)
		records = append(records, rec)
	}

	n.logger.WithFields(map[string]interface{}{
		"month":          month,
		"records":        len(records),
		"skipped":        skipped,
		"dropped_fields": droppedFields,
	}).Debug("Inventory normalized")

	return records
}

// details copies the non-broker fields the later stages read
func (n *Normalizer) details(raw contracts.RawRecord) contracts.RecordDetails {
	var d contracts.RecordDetails

	if v, ok := parseNumber(raw[FieldPrice]); ok {
		d.Price = &v
	}
	if v, ok := parseNumber(raw[FieldDividend]); ok {
		d.Dividend = &v
	}
	if v, ok := parseNumber(raw[n.policy.CarryingCostField]); ok {
		d.AverageCarryingCost = &v
	}
	if v, ok := parseCount(raw[FieldMaxCarryCost]); ok && IsShareCount(v, n.policy.ShareCountCeiling) {
		d.MaxCarryingCost = &v
	}
	if v, ok := parseCount(raw[FieldRequiredShares]); ok && v > 0 && IsShareCount(v, n.policy.ShareCountCeiling) {
		d.RequiredShares = &v
	}

	d.Restriction = parseText(raw[FieldRestriction])
	d.MarginLabel = parseText(raw[FieldMarginLabel])
	d.BenefitContent = parseText(raw[FieldBenefit])

	return d
}

// Index keys records by code; a later duplicate replaces an earlier one
func Index(records []contracts.InventoryRecord) map[string]contracts.InventoryRecord {
	idx := make(map[string]contracts.InventoryRecord, len(records))
	for _, r := range records {
		idx[r.Code] = r
	}
	return idx
}

// Codes returns record codes in payload order
func Codes(records []contracts.InventoryRecord) []string {
	codes := make([]string, len(records))
	for i, r := range records {
		codes[i] = r.Code
	}
	return codes
}

// CountInStock counts records with positive availability at broker
func CountInStock(records []contracts.InventoryRecord, broker string) int {
	count := 0
	for i := range records {
		if records[i].InStock(broker) {
			count++
		}
	}
	return count
}
