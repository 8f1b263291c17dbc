package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/internal/scheduler"
	"github.com/wonny/yuutai/internal/store"
	"github.com/wonny/yuutai/pkg/logger"
)

var (
	_ scheduler.Planner = (*InventoryJob)(nil)
	_ scheduler.Planner = (*QuoteJob)(nil)
	_ scheduler.Planner = (*MaxCostJob)(nil)
	_ scheduler.Job     = (*MaxCostJob)(nil)
)

type fakeInventory struct {
	fail map[int]bool
}

func (f *fakeInventory) FetchMonth(_ context.Context, month int) (contracts.RawPayload, error) {
	if f.fail[month] {
		return nil, errors.New("site down")
	}
	return contracts.RawPayload{{"code": "0000"}, {"code": "1111", "nvol": 100}}, nil
}

func TestInventoryJob(t *testing.T) {
	ctx := context.Background()
	s := store.NewFileStore(t.TempDir())

	job := NewInventoryJob(&fakeInventory{}, s, []int{3, 9}, logger.Nop())
	assert.Equal(t, "inventory_refresh", job.Name())
	counts, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, scheduler.RefreshCounts{Unit: "month", Requested: 2, Fetched: 2}, counts)

	for _, m := range []int{3, 9} {
		payload, _, err := s.LatestInventory(ctx, m)
		require.NoError(t, err)
		assert.Len(t, payload, 2)
	}
	_, _, err = s.LatestInventory(ctx, 4)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInventoryJob_PartialFailure(t *testing.T) {
	ctx := context.Background()
	s := store.NewFileStore(t.TempDir())

	job := NewInventoryJob(&fakeInventory{fail: map[int]bool{3: true}}, s, []int{3, 9}, logger.Nop())
	counts, err := job.Run(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, counts.Fetched)
	assert.Equal(t, 1, counts.Failed)

	// the other month is still saved
	_, _, err = s.LatestInventory(ctx, 9)
	assert.NoError(t, err)
}

func TestAllMonths(t *testing.T) {
	months := AllMonths()
	assert.Len(t, months, 12)
	assert.Equal(t, 1, months[0])
	assert.Equal(t, 12, months[11])

	job := NewInventoryJob(&fakeInventory{}, nil, nil, logger.Nop())
	assert.Len(t, job.months, 12)
}

type fakeQuotes map[string]float64

func (f fakeQuotes) Quote(_ context.Context, code string) (float64, error) {
	p, ok := f[code]
	if !ok {
		return 0, errors.New("no quote")
	}
	return p, nil
}

func TestQuoteJob(t *testing.T) {
	ctx := context.Background()
	s := store.NewFileStore(t.TempDir())
	codes := func() ([]string, error) { return []string{"1111", "2222"}, nil }

	job := NewQuoteJob(fakeQuotes{"1111": 1500}, s, codes, time.Millisecond, logger.Nop())
	counts, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1/2 quotes fetched, 1 failed", counts.String())

	prices, _, err := s.LatestQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"1111": 1500}, prices)

	empty := NewQuoteJob(fakeQuotes{}, s, codes, 0, logger.Nop())
	_, err = empty.Run(ctx)
	assert.Error(t, err)
}

type fakeMaxCosts struct {
	asked []string
}

func (f *fakeMaxCosts) FetchMaxCosts(_ context.Context, codes []string) (map[string]*int64, error) {
	f.asked = append(f.asked, codes...)
	out := make(map[string]*int64, len(codes))
	for _, c := range codes {
		v := int64(100)
		out[c] = &v
	}
	return out, nil
}

func TestMaxCostJob_OnlyMissing(t *testing.T) {
	ctx := context.Background()
	s := store.NewFileStore(t.TempDir())
	known := int64(900)
	require.NoError(t, s.SaveMaxCosts(ctx, map[string]*int64{"1111": nil, "3333": &known}))

	fetcher := &fakeMaxCosts{}
	codes := func() ([]string, error) { return []string{"1111", "2222", "3333"}, nil }
	job := NewMaxCostJob(fetcher, s, codes, logger.Nop())

	plan, err := job.Plan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Requested)
	assert.Empty(t, fetcher.asked, "planning fetches nothing")

	// "none found" is retried, a known figure is not
	counts, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1111", "2222"}, fetcher.asked)
	assert.Equal(t, 2, counts.Fetched)

	// second run has nothing to do
	counts, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1111", "2222"}, fetcher.asked)
	assert.Equal(t, "no codes to refresh", counts.String())
}

func TestMissingCodes(t *testing.T) {
	v := int64(1200)
	known := map[string]*int64{"1111": &v, "2222": nil}
	assert.Equal(t, []string{"2222", "3333"}, MissingCodes([]string{"1111", "2222", "3333"}, known))
	assert.Nil(t, MissingCodes(nil, known))
	assert.Nil(t, MissingCodes([]string{"1111"}, known))
}

func TestCountMaxCosts(t *testing.T) {
	v := int64(1200)
	costs := map[string]*int64{"1111": &v, "2222": nil}

	counts := CountMaxCosts([]string{"1111", "2222", "3333"}, costs)
	assert.Equal(t, scheduler.RefreshCounts{
		Unit: "code", Requested: 3, Fetched: 2, Failed: 1, NotFound: 1,
	}, counts)
}
