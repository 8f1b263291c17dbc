package master

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wonny/yuutai/internal/contracts"
)

// Column names of the benefit value table (kachi.csv)
const (
	ColCode            = "code"
	ColName            = "name"
	ColSettlementMonth = "settlement_month"
	ColRequiredShares  = "required_shares"
	ColBenefitValue    = "yuutai_value"
	ColContent         = "yuutai_content"
)

var requiredColumns = []string{ColCode, ColSettlementMonth, ColRequiredShares, ColBenefitValue}

// RowError reports a malformed data row
type RowError struct {
	Row     int // 1-based data row, header excluded
	Column  string
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Column, e.Message)
}

// Index is the loaded benefit value table.
// Entries keep file order; that order breaks ranking ties.
// ⭐ SSOT: 優待価値 master는 여기서만 읽음
type Index struct {
	entries []contracts.ValueMasterEntry
	byCode  map[string][]int
}

// Load reads the table from a file
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open value master: %w", err)
	}
	defer f.Close()

	idx, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return idx, nil
}

// Parse reads the table from a CSV stream with a header row.
// Every malformed row is reported; a table with any bad row is rejected.
func Parse(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty value master")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		cols[h] = i
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	idx := &Index{byCode: make(map[string][]int)}
	var errs []error

	for row := 1; ; row++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, RowError{Row: row, Column: "-", Message: err.Error()})
			continue
		}
		if blank(rec) {
			continue
		}

		entry, err := parseRow(rec, cols, row)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		idx.add(entry)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return idx, nil
}

// New builds an index from entries already in memory, keeping their order
func New(entries []contracts.ValueMasterEntry) *Index {
	idx := &Index{byCode: make(map[string][]int)}
	for _, e := range entries {
		idx.add(e)
	}
	return idx
}

func (x *Index) add(e contracts.ValueMasterEntry) {
	x.byCode[e.Code] = append(x.byCode[e.Code], len(x.entries))
	x.entries = append(x.entries, e)
}

func parseRow(rec []string, cols map[string]int, row int) (contracts.ValueMasterEntry, error) {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	e := contracts.ValueMasterEntry{
		Code:    get(ColCode),
		Name:    get(ColName),
		Content: get(ColContent),
		Row:     row,
	}

	// codes are opaque: "0123" and "123" are different securities
	if e.Code == "" {
		return e, RowError{row, ColCode, "empty"}
	}

	month, err := strconv.Atoi(get(ColSettlementMonth))
	if err != nil || month < 1 || month > 12 {
		return e, RowError{row, ColSettlementMonth, fmt.Sprintf("invalid month %q", get(ColSettlementMonth))}
	}
	e.Month = month

	shares := get(ColRequiredShares)
	if strings.HasPrefix(shares, "+") {
		e.Differential = true
		shares = shares[1:]
	}
	lot, err := strconv.ParseInt(strings.ReplaceAll(shares, ",", ""), 10, 64)
	if err != nil || lot <= 0 {
		return e, RowError{row, ColRequiredShares, fmt.Sprintf("invalid lot size %q", get(ColRequiredShares))}
	}
	e.LotSize = lot

	value, err := strconv.ParseFloat(strings.ReplaceAll(get(ColBenefitValue), ",", ""), 64)
	if err != nil || value < 0 {
		return e, RowError{row, ColBenefitValue, fmt.Sprintf("invalid value %q", get(ColBenefitValue))}
	}
	e.BenefitValue = value

	return e, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Len returns the number of entries
func (x *Index) Len() int {
	return len(x.entries)
}

// Entries returns all entries in file order
func (x *Index) Entries() []contracts.ValueMasterEntry {
	out := make([]contracts.ValueMasterEntry, len(x.entries))
	copy(out, x.entries)
	return out
}

// Lookup returns every entry for a code, one per lot size and month.
// A miss is nil, not an error.
func (x *Index) Lookup(code string) []contracts.ValueMasterEntry {
	positions := x.byCode[code]
	if len(positions) == 0 {
		return nil
	}
	out := make([]contracts.ValueMasterEntry, len(positions))
	for i, p := range positions {
		out[i] = x.entries[p]
	}
	return out
}

// ForMonth returns the entries settling in month, in file order
func (x *Index) ForMonth(month int) []contracts.ValueMasterEntry {
	var out []contracts.ValueMasterEntry
	for _, e := range x.entries {
		if e.Month == month {
			out = append(out, e)
		}
	}
	return out
}

// Codes returns distinct codes in first-seen order
func (x *Index) Codes() []string {
	seen := make(map[string]bool, len(x.byCode))
	codes := make([]string, 0, len(x.byCode))
	for _, e := range x.entries {
		if !seen[e.Code] {
			seen[e.Code] = true
			codes = append(codes, e.Code)
		}
	}
	return codes
}

// Intersection is the whitelist join of master keys and inventory codes
type Intersection struct {
	Matched   []contracts.ValueMasterEntry // master file order
	Unmatched []string                     // inventory codes with no entry for the month
}

// Intersect keeps only the month's master entries whose code is in codes.
// The master table is a hard gate; inventory codes outside it are reported, never ranked.
func (x *Index) Intersect(month int, codes []string) Intersection {
	present := make(map[string]bool, len(codes))
	for _, c := range codes {
		present[c] = true
	}

	var result Intersection
	listed := make(map[string]bool)
	for _, e := range x.ForMonth(month) {
		listed[e.Code] = true
		if present[e.Code] {
			result.Matched = append(result.Matched, e)
		}
	}

	for _, c := range codes {
		if !listed[c] {
			result.Unmatched = append(result.Unmatched, c)
		}
	}
	return result
}
