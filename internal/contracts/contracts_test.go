package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRestriction(t *testing.T) {
	tests := []struct {
		raw  string
		want RestrictionStatus
	}{
		{"", RestrictionNone},
		{"  ", RestrictionNone},
		{"停止", RestrictionHalted},
		{"新規停止", RestrictionHalted},
		{"注意", RestrictionCaution},
		{"注意喚起", RestrictionCaution},
		{"halted", RestrictionHalted},
		{"CAUTION", RestrictionCaution},
		{"なし", RestrictionNone},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRestriction(tt.raw))
		})
	}
}

func TestRestrictionStatus_UnmarshalJSON(t *testing.T) {
	var v struct {
		S RestrictionStatus `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"s":"halted"}`), &v))
	assert.Equal(t, RestrictionHalted, v.S)

	assert.Error(t, json.Unmarshal([]byte(`{"s":"bogus"}`), &v))
}

func TestInventoryRecord_InStock(t *testing.T) {
	rec := InventoryRecord{
		Code:         "3387",
		Availability: map[string]int64{"nikko": 1200, "sbi": 0},
	}

	assert.True(t, rec.InStock("nikko"))
	assert.False(t, rec.InStock("sbi"))
	assert.False(t, rec.InStock("gmo"))

	v, ok := rec.Available("sbi")
	assert.True(t, ok)
	assert.Equal(t, int64(0), v)
}

func TestRanking_TopAndFilter(t *testing.T) {
	r := &Ranking{
		Month: 3,
		Entries: []PerformanceEntry{
			{Rank: 1, Code: "A", Availability: map[string]int64{"nikko": 100}},
			{Rank: 2, Code: "B"},
			{Rank: 3, Code: "C", Availability: map[string]int64{"nikko": 5}},
		},
	}

	assert.Len(t, r.Top(2), 2)
	assert.Len(t, r.Top(0), 3)
	assert.Len(t, r.Top(10), 3)

	inStock := r.Filter(func(e PerformanceEntry) bool { return e.InStock("nikko") })
	require.Len(t, inStock.Entries, 2)
	assert.Equal(t, "A", inStock.Entries[0].Code)
	assert.Equal(t, 3, inStock.Entries[1].Rank)
	assert.Equal(t, 3, inStock.Month)
}

func TestRanking_ByMonthlyYield(t *testing.T) {
	r := &Ranking{Month: 3, Entries: []PerformanceEntry{
		{Rank: 1, Code: "A", Metric: 9, MonthlyYield: 1},
		{Rank: 2, Code: "B", Metric: 8, MonthlyYield: 4},
		{Rank: 3, Code: "C", Metric: 7, MonthlyYield: 1},
	}}

	got := r.ByMonthlyYield()
	codes := make([]string, len(got.Entries))
	for i, e := range got.Entries {
		codes[i] = e.Code
	}
	assert.Equal(t, []string{"B", "A", "C"}, codes)
	assert.Equal(t, 2, got.Entries[0].Rank)

	// the source ranking is untouched
	assert.Equal(t, "A", r.Entries[0].Code)
}
