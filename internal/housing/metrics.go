package housing

import "math"

// Metrics is the derived housing snapshot for one region. Every derived field
// is nil when the underlying series lacks the history to compute it; a
// missing field never prevents its siblings from being populated.
type Metrics struct {
	MetroName string `json:"metro_name"`

	ZHVI1YGrowth *float64 `json:"zhvi_1y_growth,omitempty"`
	ZHVI3YCAGR   *float64 `json:"zhvi_3y_cagr,omitempty"`
	CurrentZHVI  *float64 `json:"current_zhvi,omitempty"`

	ZORI1YGrowth     *float64 `json:"zori_1y_growth,omitempty"`
	CurrentZORI      *float64 `json:"current_zori,omitempty"`
	RentToPriceRatio *float64 `json:"rent_to_price_ratio,omitempty"`

	MonthsSupply      *float64 `json:"months_supply,omitempty"`
	DaysOnMarket      *float64 `json:"days_on_market,omitempty"`
	MarketTemperature *float64 `json:"market_temperature,omitempty"`
	MarketTemp6MTrend *float64 `json:"market_temp_6m_trend,omitempty"`

	CurrentSalesCount  *float64 `json:"current_sales_count,omitempty"`
	SalesVelocityTrend *float64 `json:"sales_velocity_trend,omitempty"`
}

// Metrics derives the housing snapshot from the region's loaded series.
//
// Lookback offsets count monthly columns, not observations: a 1-year growth
// needs at least 13 columns (current plus twelve prior), a 3-year CAGR needs
// 37, and the market-temperature trend needs 7. Growth figures are percents
// rounded to two decimals.
func (r *Region) Metrics() *Metrics {
	m := &Metrics{MetroName: r.Name}

	if zhvi := r.series[IndexZHVI]; len(zhvi) > 0 {
		latest := zhvi[len(zhvi)-1].Value
		m.CurrentZHVI = latest
		if len(zhvi) >= 13 {
			m.ZHVI1YGrowth = pctChange(zhvi[len(zhvi)-13].Value, latest)
		}
		if len(zhvi) >= 37 {
			if old := zhvi[len(zhvi)-37].Value; usable(old) && usable(latest) {
				cagr := (math.Pow(*latest / *old, 1.0/3.0) - 1) * 100
				m.ZHVI3YCAGR = round2(cagr)
			}
		}
	}

	if zori := r.series[IndexZORI]; len(zori) > 0 {
		latest := zori[len(zori)-1].Value
		m.CurrentZORI = latest
		if len(zori) >= 13 {
			m.ZORI1YGrowth = pctChange(zori[len(zori)-13].Value, latest)
		}
		if usable(m.CurrentZHVI) && usable(latest) {
			m.RentToPriceRatio = round2(*latest * 12 / *m.CurrentZHVI * 100)
		}
	}

	if inv := r.series[IndexInventory]; len(inv) > 0 {
		m.MonthsSupply = inv[len(inv)-1].Value
	}

	if dom := r.series[IndexDaysOnMarket]; len(dom) > 0 {
		m.DaysOnMarket = dom[len(dom)-1].Value
	}

	if temp := r.series[IndexMarketTemp]; len(temp) > 0 {
		latest := temp[len(temp)-1].Value
		m.MarketTemperature = latest
		if len(temp) >= 7 {
			if old := temp[len(temp)-7].Value; usable(old) && latest != nil {
				m.MarketTemp6MTrend = round2(*latest - *old)
			}
		}
	}

	if sales := r.series[IndexSalesCount]; len(sales) > 0 {
		latest := sales[len(sales)-1].Value
		m.CurrentSalesCount = latest
		if len(sales) >= 13 {
			m.SalesVelocityTrend = pctChange(sales[len(sales)-13].Value, latest)
		}
	}

	return m
}

// pctChange returns (latest-old)/old*100 rounded to two decimals, or nil when
// either point is absent or the base is zero.
func pctChange(old, latest *float64) *float64 {
	if !usable(old) || !usable(latest) {
		return nil
	}
	return round2((*latest - *old) / *old * 100)
}

func usable(v *float64) bool {
	return v != nil && *v != 0
}

func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
