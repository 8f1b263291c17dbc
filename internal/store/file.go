package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wonny/yuutai/internal/contracts"
)

const (
	inventoryDir  = "ippan_zaiko"
	priceDir      = "stock_price"
	pricesFile    = "latest_prices.json"
	maxCostsFile  = "max_gyaku.json"
	updatedMarker = "_updated"
)

// FileStore keeps snapshots as JSON files under a data directory:
//
//	ippan_zaiko/zaiko_MM_YYYYMMDD.json
//	stock_price/latest_prices.json
//	max_gyaku.json
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates a file store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

type quotesFile struct {
	UpdatedAt time.Time          `json:"updated_at"`
	Prices    map[string]float64 `json:"prices"`
}

// SaveInventory writes the payload of a month; a second save on the same day replaces the first
func (s *FileStore) SaveInventory(_ context.Context, month int, payload contracts.RawPayload) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("invalid month %d", month)
	}
	name := fmt.Sprintf("zaiko_%02d_%s.json", month, s.now().Format("20060102"))
	return writeJSON(filepath.Join(s.dir, inventoryDir, name), payload)
}

// LatestInventory reads the newest payload saved for month
func (s *FileStore) LatestInventory(_ context.Context, month int) (contracts.RawPayload, time.Time, error) {
	pattern := filepath.Join(s.dir, inventoryDir, fmt.Sprintf("zaiko_%02d_*.json", month))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(matches) == 0 {
		return nil, time.Time{}, fmt.Errorf("inventory month %d: %w", month, ErrNotFound)
	}

	// YYYYMMDD sorts lexically
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	data, err := os.ReadFile(latest)
	if err != nil {
		return nil, time.Time{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload contracts.RawPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode %s: %w", filepath.Base(latest), err)
	}

	info, err := os.Stat(latest)
	if err != nil {
		return nil, time.Time{}, err
	}
	return payload, info.ModTime(), nil
}

// SaveQuotes replaces the live quote file
func (s *FileStore) SaveQuotes(_ context.Context, prices map[string]float64) error {
	return writeJSON(filepath.Join(s.dir, priceDir, pricesFile), quotesFile{
		UpdatedAt: s.now(),
		Prices:    prices,
	})
}

// LatestQuotes reads the live quote file
func (s *FileStore) LatestQuotes(_ context.Context) (map[string]float64, time.Time, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, priceDir, pricesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, time.Time{}, fmt.Errorf("quotes: %w", ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var qf quotesFile
	if err := json.Unmarshal(data, &qf); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode %s: %w", pricesFile, err)
	}
	if qf.Prices == nil {
		qf.Prices = map[string]float64{}
	}
	return qf.Prices, qf.UpdatedAt, nil
}

// SaveMaxCosts merges costs into the max cost file
func (s *FileStore) SaveMaxCosts(ctx context.Context, costs map[string]*int64) error {
	existing, err := s.MaxCosts(ctx)
	if err != nil {
		return err
	}
	for code, v := range costs {
		existing[code] = v
	}

	out := make(map[string]interface{}, len(existing)+1)
	for code, v := range existing {
		out[code] = v
	}
	out[updatedMarker] = s.now().Format(time.RFC3339)

	return writeJSON(filepath.Join(s.dir, maxCostsFile), out)
}

// MaxCosts reads the max cost file; a missing file is an empty table
func (s *FileStore) MaxCosts(_ context.Context) (map[string]*int64, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, maxCostsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*int64{}, nil
	}
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", maxCostsFile, err)
	}

	costs := make(map[string]*int64, len(raw))
	for code, msg := range raw {
		if code == updatedMarker {
			continue
		}
		var v *int64
		if err := json.Unmarshal(msg, &v); err != nil {
			return nil, fmt.Errorf("decode %s[%s]: %w", maxCostsFile, code, err)
		}
		costs[code] = v
	}
	return costs, nil
}

// writeJSON writes through a temp file so readers never see half a file
func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
