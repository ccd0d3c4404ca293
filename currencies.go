package main

import (
	"math"
	"time"
)

// rateBreakpoint is one point of a currency's rate history: the rate to EUR
// effective from Date onward. A nil Rate marks the currency as discontinued
// from that date (e.g. HRK after the euro changeover).
type rateBreakpoint struct {
	Date string // YYYY-MM-DD, compared lexicographically
	Rate *float64
}

func rate(v float64) *float64 { return &v }

// exchangeRatesToEUR is the static time series of rates to EUR. Lookup picks
// the latest breakpoint with effective date <= the query date.
var exchangeRatesToEUR = map[string][]rateBreakpoint{
	"BGN": { // pegged to EUR
		{"2000-01-01", rate(0.5113)},
	},
	"NOK": {
		{"2023-01-01", rate(0.092)},
		{"2024-01-01", rate(0.087)},
		{"2025-01-01", rate(0.082)},
		{"2026-01-01", rate(0.085)},
	},
	"TRY": { // significant depreciation, denser breakpoints
		{"2023-01-01", rate(0.050)},
		{"2023-07-01", rate(0.037)},
		{"2024-01-01", rate(0.030)},
		{"2024-07-01", rate(0.027)},
		{"2025-01-01", rate(0.026)},
		{"2025-07-01", rate(0.025)},
		{"2026-01-01", rate(0.024)},
	},
	"USD": {
		{"2023-01-01", rate(0.93)},
		{"2024-01-01", rate(0.91)},
		{"2025-01-01", rate(0.96)},
		{"2026-01-01", rate(0.94)},
	},
	"GBP": {
		{"2023-01-01", rate(1.13)},
		{"2024-01-01", rate(1.15)},
		{"2025-01-01", rate(1.19)},
		{"2026-01-01", rate(1.16)},
	},
	"BAM": { // pegged to EUR
		{"2000-01-01", rate(0.5113)},
	},
	"RON": {
		{"2023-01-01", rate(0.203)},
		{"2024-01-01", rate(0.201)},
		{"2025-01-01", rate(0.200)},
		{"2026-01-01", rate(0.200)},
	},
	"HRK": { // replaced by EUR on 2023-01-01
		{"2020-01-01", rate(0.132)},
		{"2023-01-01", nil},
	},
	"RSD": {
		{"2023-01-01", rate(0.0085)},
		{"2024-01-01", rate(0.0085)},
	},
	"ALL": {
		{"2023-01-01", rate(0.0093)},
		{"2024-01-01", rate(0.0095)},
	},
	"MKD": {
		{"2023-01-01", rate(0.0162)},
		{"2024-01-01", rate(0.0162)},
	},
	"SEK": {
		{"2023-01-01", rate(0.089)},
		{"2024-01-01", rate(0.087)},
		{"2025-01-01", rate(0.086)},
	},
	"DKK": { // pegged to EUR
		{"2000-01-01", rate(0.134)},
	},
	"PLN": {
		{"2023-01-01", rate(0.213)},
		{"2024-01-01", rate(0.230)},
		{"2025-01-01", rate(0.233)},
	},
	"CHF": {
		{"2023-01-01", rate(1.00)},
		{"2024-01-01", rate(1.05)},
		{"2025-01-01", rate(1.06)},
	},
}

// GetExchangeRate returns the rate to EUR for a currency at a date given as
// YYYY-MM-DD. ok is false for an unknown currency, a date before the first
// breakpoint, or a currency discontinued at that date. Callers treat a miss
// as routine and accumulate a warning, never abort.
func GetExchangeRate(currency, dateStr string) (float64, bool) {
	if currency == "EUR" {
		return 1.0, true
	}
	breakpoints, ok := exchangeRatesToEUR[currency]
	if !ok {
		return 0, false
	}
	var applicable *float64
	found := false
	for _, bp := range breakpoints {
		if bp.Date <= dateStr {
			applicable = bp.Rate
			found = true
		} else {
			break
		}
	}
	if !found || applicable == nil {
		return 0, false
	}
	return *applicable, true
}

// ConvertToEUR converts an amount to EUR at the rate effective on date.
func ConvertToEUR(amount MoneyWith2DecimalPlaces, currency string, date time.Time) (MoneyWith2DecimalPlaces, bool) {
	r, ok := GetExchangeRate(currency, date.Format(DiaryDateFormat))
	if !ok {
		return MoneyWith2DecimalPlaces{}, false
	}
	return MoneyWith2DecimalPlaces{int: int(math.Round(float64(amount.Cents()) * r))}, true
}
