package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/market-pulse/internal/housing"
	"github.com/sells-group/market-pulse/internal/metric"
)

func TestHousingNilDataset(t *testing.T) {
	h := NewHousing(nil)
	env := h.Fetch(context.Background(), denverGeo())
	assert.Equal(t, metric.ConfidenceMissing, env.Confidence)
	assert.Contains(t, env.Err, "not loaded")
}

func TestHousingResolvesRegion(t *testing.T) {
	dir := t.TempDir()
	csv := "RegionID,SizeRank,RegionName,RegionType,StateName,2026-04-01,2026-05-01\n" +
		"394530,10,\"Denver, CO\",msa,CO,430000,440000\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "Metro_zhvi_uc_sfrcondo_tier_0.33_0.67_sm_sa_month.csv"),
		[]byte(csv), 0o644))

	ds, err := housing.Load(dir)
	require.NoError(t, err)

	h := NewHousing(ds)
	env := h.Fetch(context.Background(), denverGeo())
	require.Equal(t, metric.ConfidenceGood, env.Confidence)

	m, ok := env.Value.(*housing.Metrics)
	require.True(t, ok)
	assert.Equal(t, "Denver, CO", m.MetroName)
	require.NotNil(t, m.CurrentZHVI)
	assert.Equal(t, 440000.0, *m.CurrentZHVI)
}

func TestHousingNoMatch(t *testing.T) {
	dir := t.TempDir()
	csv := "RegionID,SizeRank,RegionName,RegionType,StateName,2026-05-01\n" +
		"394913,1,\"New York, NY\",msa,NY,650000\n"
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "Metro_zhvi_uc_sfrcondo_tier_0.33_0.67_sm_sa_month.csv"),
		[]byte(csv), 0o644))

	ds, err := housing.Load(dir)
	require.NoError(t, err)

	h := NewHousing(ds)
	env := h.Fetch(context.Background(), denverGeo())
	assert.Equal(t, metric.ConfidenceMissing, env.Confidence)
	assert.Contains(t, env.Err, "Denver")
}
