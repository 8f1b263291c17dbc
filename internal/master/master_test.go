package master

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `code,name,settlement_month,required_shares,yuutai_value,yuutai_content
1234,Alpha,3,100,3000,QUO card
0123,Zero Lead,3,100,1000,
1234,Alpha,3,200,5000,QUO card x2
1234,Alpha,3,+300,2000,extra
5678,Beta,9,"1,000","12,000",catalog
`

func TestParse(t *testing.T) {
	idx, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 5, idx.Len())

	entries := idx.Entries()
	assert.Equal(t, "1234", entries[0].Code)
	assert.Equal(t, 1, entries[0].Row)
	assert.Equal(t, int64(100), entries[0].LotSize)
	assert.Equal(t, 3000.0, entries[0].BenefitValue)
	assert.Equal(t, "QUO card", entries[0].Content)

	// leading zero kept
	assert.Equal(t, "0123", entries[1].Code)

	assert.True(t, entries[3].Differential)
	assert.Equal(t, int64(300), entries[3].LotSize)

	assert.Equal(t, int64(1000), entries[4].LotSize)
	assert.Equal(t, 12000.0, entries[4].BenefitValue)
}

func TestLookup(t *testing.T) {
	idx, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	got := idx.Lookup("1234")
	require.Len(t, got, 3)
	assert.Equal(t, []int64{100, 200, 300}, []int64{got[0].LotSize, got[1].LotSize, got[2].LotSize})

	assert.Nil(t, idx.Lookup("9999"))
	assert.Nil(t, idx.Lookup("123"), "codes are not coerced to numbers")
}

func TestForMonthKeepsFileOrder(t *testing.T) {
	idx, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	march := idx.ForMonth(3)
	require.Len(t, march, 4)
	rows := make([]int, len(march))
	for i, e := range march {
		rows[i] = e.Row
	}
	assert.Equal(t, []int{1, 2, 3, 4}, rows)

	assert.Empty(t, idx.ForMonth(12))
	assert.Equal(t, []string{"1234", "0123", "5678"}, idx.Codes())
}

func TestIntersect(t *testing.T) {
	idx, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	result := idx.Intersect(3, []string{"1234", "5678", "4444"})

	require.Len(t, result.Matched, 3)
	for _, e := range result.Matched {
		assert.Equal(t, "1234", e.Code)
	}
	// 5678 settles in September so it is not listed for March
	assert.Equal(t, []string{"5678", "4444"}, result.Unmatched)
}

func TestIntersect_EmptyInventory(t *testing.T) {
	idx, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	result := idx.Intersect(3, nil)
	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Unmatched)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "empty value master"},
		{"missing column", "code,name\n1234,A\n", `missing column "settlement_month"`},
		{"bad month", "code,settlement_month,required_shares,yuutai_value\n1234,13,100,1000\n", "row 1: settlement_month"},
		{"zero lot", "code,settlement_month,required_shares,yuutai_value\n1234,3,0,1000\n", "row 1: required_shares"},
		{"bad value", "code,settlement_month,required_shares,yuutai_value\n1234,3,100,abc\n", "row 1: yuutai_value"},
		{"empty code", "code,settlement_month,required_shares,yuutai_value\n,3,100,1000\n", "row 1: code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_ReportsEveryBadRow(t *testing.T) {
	input := "code,settlement_month,required_shares,yuutai_value\n1,3,x,1\n2,3,100,1\n3,0,100,1\n"

	_, err := Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
	assert.Contains(t, err.Error(), "row 3")
	assert.NotContains(t, err.Error(), "row 2")
}

func TestParse_BOMAndBlankLines(t *testing.T) {
	input := "\ufeffcode,settlement_month,required_shares,yuutai_value\n\n1234,3,100,1000\n"

	idx, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kachi.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	idx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, idx.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
