// Package housing loads the bulk regional market index files and derives
// per-region housing metrics from them.
package housing

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Index identifies one of the bundled market index series.
type Index string

const (
	IndexZHVI         Index = "zhvi"
	IndexZORI         Index = "zori"
	IndexInventory    Index = "inventory"
	IndexSalesCount   Index = "sales_count"
	IndexDaysOnMarket Index = "days_on_market"
	IndexMarketTemp   Index = "market_temp"
)

// Indexes lists every series in load order. The home-value file is first
// because it defines the canonical region list.
var Indexes = []Index{
	IndexZHVI,
	IndexZORI,
	IndexInventory,
	IndexSalesCount,
	IndexDaysOnMarket,
	IndexMarketTemp,
}

var indexFiles = map[Index]string{
	IndexZHVI:         "Metro_zhvi_uc_sfrcondo_tier_0.33_0.67_sm_sa_month.csv",
	IndexZORI:         "Metro_zori_uc_sfrcondomfr_sm_month.csv",
	IndexInventory:    "Metro_invt_fs_uc_sfrcondo_sm_month.csv",
	IndexSalesCount:   "Metro_sales_count_now_uc_sfrcondo_month.csv",
	IndexDaysOnMarket: "Metro_mean_doz_pending_uc_sfrcondo_sm_month.csv",
	IndexMarketTemp:   "Metro_market_temp_index_uc_sfrcondo_month.csv",
}

var dateHeaderRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// observation is one monthly column value. A nil value means the column was
// present in the file but empty for this region.
type observation struct {
	Date  time.Time
	Value *float64
}

// Region is one metro area with its loaded index series.
type Region struct {
	Name   string
	series map[Index][]observation
}

// regionRow maps the fixed leading columns of every index file. The date
// columns are collected via the decoder's unused-field hook.
type regionRow struct {
	RegionID   int    `csv:"RegionID"`
	SizeRank   int    `csv:"SizeRank"`
	RegionName string `csv:"RegionName"`
	RegionType string `csv:"RegionType"`
	StateName  string `csv:"StateName"`
}

// Dataset holds every loaded region, plus a resolution cache mapping free-text
// location queries to region names. The cache is append-only for the life of
// the process.
type Dataset struct {
	dir     string
	regions map[string]*Region
	names   []string

	cache sync.Map // lowercased query -> region name
}

// Load reads every index file found under dir. Missing files are logged and
// skipped so a partial dataset still serves the series it has; only a
// completely empty dataset is an error.
func Load(dir string) (*Dataset, error) {
	ds := &Dataset{
		dir:     dir,
		regions: make(map[string]*Region),
	}

	loaded := 0
	for _, idx := range Indexes {
		path := filepath.Join(dir, indexFiles[idx])
		n, err := ds.loadFile(idx, path)
		if err != nil {
			if os.IsNotExist(eris.Cause(err)) {
				zap.L().Warn("housing index file missing",
					zap.String("index", string(idx)),
					zap.String("path", path))
				continue
			}
			return nil, eris.Wrapf(err, "load %s", indexFiles[idx])
		}
		zap.L().Debug("loaded housing index",
			zap.String("index", string(idx)),
			zap.Int("regions", n))
		loaded++
	}
	if loaded == 0 {
		return nil, eris.Errorf("no housing index files found in %s", dir)
	}

	// Canonical region order follows the home-value file's size ranking.
	for name := range ds.regions {
		ds.names = append(ds.names, name)
	}
	sort.Strings(ds.names)

	return ds, nil
}

func (ds *Dataset) loadFile(idx Index, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrap(err, "open index file")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		return 0, eris.Wrap(err, "read header")
	}

	header := dec.Header()
	dates := make([]time.Time, len(header))
	for i, h := range header {
		if dateHeaderRe.MatchString(h) {
			d, perr := time.Parse("2006-01-02", h)
			if perr != nil {
				continue
			}
			dates[i] = d
		}
	}

	n := 0
	for {
		var row regionRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return n, eris.Wrap(err, "decode row")
		}
		if row.RegionName == "" {
			continue
		}

		obs := make([]observation, 0, len(header))
		record := dec.Record()
		for _, i := range dec.Unused() {
			if dates[i].IsZero() || i >= len(record) {
				continue
			}
			o := observation{Date: dates[i]}
			if raw := record[i]; raw != "" {
				if v, perr := strconv.ParseFloat(raw, 64); perr == nil {
					o.Value = &v
				}
			}
			obs = append(obs, o)
		}
		sort.Slice(obs, func(a, b int) bool { return obs[a].Date.Before(obs[b].Date) })

		reg := ds.regions[row.RegionName]
		if reg == nil {
			reg = &Region{Name: row.RegionName, series: make(map[Index][]observation)}
			ds.regions[row.RegionName] = reg
		}
		reg.series[idx] = obs
		n++
	}
	return n, nil
}

// Regions returns the loaded region names in sorted order.
func (ds *Dataset) Regions() []string {
	return ds.names
}

// Region looks up a region by its exact name.
func (ds *Dataset) Region(name string) (*Region, bool) {
	r, ok := ds.regions[name]
	return r, ok
}

// IndexStatus summarizes one loaded series for the status command.
type IndexStatus struct {
	Index   Index      `json:"index"`
	File    string     `json:"file"`
	Regions int        `json:"regions"`
	Latest  *time.Time `json:"latest,omitempty"`
}

// Status reports per-index load state: how many regions carry each series and
// the most recent month present.
func (ds *Dataset) Status() []IndexStatus {
	out := make([]IndexStatus, 0, len(Indexes))
	for _, idx := range Indexes {
		st := IndexStatus{Index: idx, File: indexFiles[idx]}
		for _, reg := range ds.regions {
			obs, ok := reg.series[idx]
			if !ok {
				continue
			}
			st.Regions++
			if len(obs) > 0 {
				last := obs[len(obs)-1].Date
				if st.Latest == nil || last.After(*st.Latest) {
					st.Latest = &last
				}
			}
		}
		out = append(out, st)
	}
	return out
}
