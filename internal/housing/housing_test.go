package housing

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeIndexFile writes a wide-format index CSV with one row per region. Each
// region maps to a value series aligned with months monthly columns ending at
// endMonth; empty strings leave the column blank.
func writeIndexFile(t *testing.T, dir string, idx Index, months int, endMonth time.Time, rows map[string][]string) {
	t.Helper()

	header := []string{"RegionID", "SizeRank", "RegionName", "RegionType", "StateName"}
	for i := months - 1; i >= 0; i-- {
		header = append(header, endMonth.AddDate(0, -i, 0).Format("2006-01-02"))
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	require.NoError(t, w.Write(header))
	id := 1000
	for name, vals := range rows {
		require.Len(t, vals, months)
		rec := []string{fmt.Sprint(id), fmt.Sprint(id - 999), name, "msa", "CO"}
		rec = append(rec, vals...)
		require.NoError(t, w.Write(rec))
		id++
	}
	w.Flush()
	require.NoError(t, w.Error())

	require.NoError(t, os.WriteFile(filepath.Join(dir, indexFiles[idx]), []byte(b.String()), 0o644))
}

func steadySeries(n int, start, step float64) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%.1f", start+step*float64(i))
	}
	return out
}

func TestLoadAndMetrics(t *testing.T) {
	dir := t.TempDir()
	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	// 13 months of home values rising 400000 -> 440000 over the year.
	zhvi := []string{"400000"}
	for i := 1; i < 13; i++ {
		zhvi = append(zhvi, fmt.Sprint(400000+i*40000/12))
	}
	zhvi[12] = "440000"
	writeIndexFile(t, dir, IndexZHVI, 13, end, map[string][]string{
		"Denver, CO": zhvi,
	})
	writeIndexFile(t, dir, IndexZORI, 13, end, map[string][]string{
		"Denver, CO": steadySeries(13, 1800, 10),
	})
	writeIndexFile(t, dir, IndexDaysOnMarket, 3, end, map[string][]string{
		"Denver, CO": {"30", "28", "25"},
	})
	writeIndexFile(t, dir, IndexMarketTemp, 7, end, map[string][]string{
		"Denver, CO": {"60", "61", "62", "63", "64", "65", "66.5"},
	})

	ds, err := Load(dir)
	require.NoError(t, err)

	reg, ok := ds.Region("Denver, CO")
	require.True(t, ok)

	m := reg.Metrics()
	require.NotNil(t, m.ZHVI1YGrowth)
	assert.InDelta(t, 10.0, *m.ZHVI1YGrowth, 0.001)
	require.NotNil(t, m.CurrentZHVI)
	assert.Equal(t, 440000.0, *m.CurrentZHVI)

	// Only 13 columns: not enough for the 3-year CAGR.
	assert.Nil(t, m.ZHVI3YCAGR)

	require.NotNil(t, m.ZORI1YGrowth)
	require.NotNil(t, m.RentToPriceRatio)
	assert.InDelta(t, 1920.0*12/440000*100, *m.RentToPriceRatio, 0.01)

	require.NotNil(t, m.DaysOnMarket)
	assert.Equal(t, 25.0, *m.DaysOnMarket)

	require.NotNil(t, m.MarketTemp6MTrend)
	assert.InDelta(t, 6.5, *m.MarketTemp6MTrend, 0.001)

	// Sales file absent entirely: those fields stay nil.
	assert.Nil(t, m.CurrentSalesCount)
	assert.Nil(t, m.SalesVelocityTrend)
}

func TestMetricsInsufficientHistory(t *testing.T) {
	dir := t.TempDir()
	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	writeIndexFile(t, dir, IndexZHVI, 6, end, map[string][]string{
		"Boulder, CO": steadySeries(6, 500000, 1000),
	})

	ds, err := Load(dir)
	require.NoError(t, err)

	reg, ok := ds.Region("Boulder, CO")
	require.True(t, ok)

	m := reg.Metrics()
	assert.Nil(t, m.ZHVI1YGrowth)
	assert.Nil(t, m.ZHVI3YCAGR)
	require.NotNil(t, m.CurrentZHVI)
	assert.Equal(t, 505000.0, *m.CurrentZHVI)
}

func TestMetricsBlankColumns(t *testing.T) {
	dir := t.TempDir()
	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	// The 1-year-ago column is blank, so growth cannot be computed even
	// though 13 columns exist.
	vals := steadySeries(13, 300000, 1000)
	vals[0] = ""
	writeIndexFile(t, dir, IndexZHVI, 13, end, map[string][]string{
		"Pueblo, CO": vals,
	})

	ds, err := Load(dir)
	require.NoError(t, err)

	reg, ok := ds.Region("Pueblo, CO")
	require.True(t, ok)

	m := reg.Metrics()
	assert.Nil(t, m.ZHVI1YGrowth)
	require.NotNil(t, m.CurrentZHVI)
}

func TestLoadEmptyDir(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func newResolveDataset(t *testing.T, names ...string) *Dataset {
	t.Helper()
	dir := t.TempDir()
	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := make(map[string][]string, len(names))
	for _, n := range names {
		rows[n] = steadySeries(3, 100, 1)
	}
	writeIndexFile(t, dir, IndexZHVI, 3, end, rows)

	ds, err := Load(dir)
	require.NoError(t, err)
	return ds
}

func TestResolve(t *testing.T) {
	ds := newResolveDataset(t,
		"Denver, CO", "New York, NY", "Los Angeles, CA", "Washington, DC")

	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"Denver, Colorado", "Denver, CO", true},
		{"denver", "Denver, CO", true},
		{"1234 Main St, Denver, CO 80202", "Denver, CO", true},
		{"nyc", "New York, NY", true},
		{"la", "Los Angeles, CA", true},
		{"dc", "Washington, DC", true},
		{"Anchorage, AK", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			reg, ok := ds.Resolve(tt.query)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, reg.Name)
			}
		})
	}
}

func TestResolveCaches(t *testing.T) {
	ds := newResolveDataset(t, "Denver, CO")

	_, ok := ds.Resolve("Denver")
	require.True(t, ok)

	// Second lookup must hit the cache.
	_, cached := ds.cache.Load("denver")
	assert.True(t, cached)

	reg, ok := ds.Resolve("Denver")
	require.True(t, ok)
	assert.Equal(t, "Denver, CO", reg.Name)
}

func TestSearchTerms(t *testing.T) {
	terms := searchTerms("The City of New York")
	assert.Contains(t, terms, "New York")
	assert.Contains(t, terms, "City")
	assert.NotContains(t, terms, "of")
	assert.NotContains(t, terms, "The")
}

func TestStatus(t *testing.T) {
	ds := newResolveDataset(t, "Denver, CO", "Boulder, CO")

	status := ds.Status()
	require.Len(t, status, len(Indexes))

	byIndex := make(map[Index]IndexStatus, len(status))
	for _, st := range status {
		byIndex[st.Index] = st
	}
	assert.Equal(t, 2, byIndex[IndexZHVI].Regions)
	require.NotNil(t, byIndex[IndexZHVI].Latest)
	assert.Equal(t, 0, byIndex[IndexZORI].Regions)
	assert.Nil(t, byIndex[IndexZORI].Latest)
}
