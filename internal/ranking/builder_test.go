package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/yuutai/internal/contracts"
)

func e(code string, lot int64, metric float64) contracts.PerformanceEntry {
	return contracts.PerformanceEntry{Code: code, LotSize: lot, Month: 3, Metric: metric}
}

func TestBuild_DescendingWithRanks(t *testing.T) {
	r := Build(3, []contracts.PerformanceEntry{
		e("1111", 100, 1.5),
		e("2222", 100, 4.0),
		e("3333", 100, -0.5),
	})

	require.Len(t, r.Entries, 3)
	assert.Equal(t, 3, r.Month)
	assert.Equal(t, []string{"2222", "1111", "3333"}, codes(r))
	for i, entry := range r.Entries {
		assert.Equal(t, i+1, entry.Rank)
	}
}

func TestBuild_StableTies(t *testing.T) {
	r := Build(3, []contracts.PerformanceEntry{
		e("A", 100, 2.0),
		e("B", 100, 3.0),
		e("C", 100, 2.0),
		e("D", 100, 2.0),
	})

	assert.Equal(t, []string{"B", "A", "C", "D"}, codes(r))
}

func TestBuild_LotSizesStaySeparate(t *testing.T) {
	r := Build(3, []contracts.PerformanceEntry{
		e("1234", 100, 3.0),
		e("1234", 200, 2.5),
	})

	require.Len(t, r.Entries, 2)
	assert.Equal(t, int64(100), r.Entries[0].LotSize)
	assert.Equal(t, int64(200), r.Entries[1].LotSize)
}

func TestBuild_Empty(t *testing.T) {
	r := Build(5, nil)
	assert.Empty(t, r.Entries)
	assert.Equal(t, 5, r.Month)
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := []contracts.PerformanceEntry{e("A", 100, 1), e("B", 100, 2)}
	Build(3, in)

	assert.Equal(t, "A", in[0].Code)
	assert.Zero(t, in[0].Rank)
}

func TestRanking_TopAndFilter(t *testing.T) {
	r := Build(3, []contracts.PerformanceEntry{
		{Code: "A", Metric: 3, Availability: map[string]int64{"nikko": 100}},
		{Code: "B", Metric: 2},
		{Code: "C", Metric: 1, Availability: map[string]int64{"nikko": 5}},
	})

	assert.Len(t, r.Top(2), 2)
	assert.Len(t, r.Top(0), 3)
	assert.Len(t, r.Top(10), 3)

	inStock := r.Filter(func(p contracts.PerformanceEntry) bool { return p.InStock("nikko") })
	require.Len(t, inStock.Entries, 2)
	assert.Equal(t, 1, inStock.Entries[0].Rank)
	assert.Equal(t, 3, inStock.Entries[1].Rank)
}

func codes(r *contracts.Ranking) []string {
	out := make([]string, len(r.Entries))
	for i, entry := range r.Entries {
		out[i] = entry.Code
	}
	return out
}
