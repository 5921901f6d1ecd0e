package itinerary

import (
	"regexp"
	"strconv"
	"strings"
)

// ReferenceCurrency is the single currency every per-day budget figure is
// normalized into.
const ReferenceCurrency = "USD"

// Rates maps an ISO currency code to its value in the reference currency.
// The reference currency itself carries rate 1. The table is injected
// configuration so deployments (and tests) can swap it without code change.
type Rates map[string]float64

// DefaultRates is the static table used when the caller injects nothing.
var DefaultRates = Rates{
	"USD": 1,
	"EUR": 1.08,
	"GBP": 1.27,
	"INR": 0.012,
	"JPY": 0.0067,
	"AED": 0.27,
}

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"₹": "INR",
	"¥": "JPY",
}

var (
	pricePerNightRe = regexp.MustCompile(`(?i)Price:\s*([$€£₹¥]|[A-Z]{3})\s*([\d,]+(?:\.\d+)?)\s*per\s*night`)
	priceBareRe     = regexp.MustCompile(`(?i)Price:\s*([$€£₹¥]|[A-Z]{3})\s*([\d,]+(?:\.\d+)?)`)
)

// ExtractPrice scans free text for a currency-tagged price mention of the
// shape "Price: <symbol-or-code> <number> per night", falling back to the
// same pattern without "per night". It returns the amount and the ISO
// currency code, or ok=false when nothing matches.
func ExtractPrice(text string) (amount float64, code string, ok bool) {
	m := pricePerNightRe.FindStringSubmatch(text)
	if m == nil {
		m = priceBareRe.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, "", false
	}

	amount, ok = parseNumericString(m[2])
	if !ok {
		return 0, "", false
	}

	code = strings.ToUpper(m[1])
	if iso, found := currencySymbols[m[1]]; found {
		code = iso
	}
	return amount, code, true
}

// ReconcileBudget overwrites every day's accommodation rollup with the
// per-night price mined from the first day's accommodation notes, converted
// to the reference currency. The conversion input is only ever the free-text
// notes field, never the already-numeric breakdown, so re-running the
// reconciler is idempotent. An unmatched pattern is a silent no-op.
func ReconcileBudget(it CanonicalItinerary, rates Rates) CanonicalItinerary {
	if len(it.DailyItinerary) == 0 {
		return it
	}
	if rates == nil {
		rates = DefaultRates
	}

	amount, code, ok := ExtractPrice(it.DailyItinerary[0].Accommodation.Notes)
	if !ok {
		return it
	}
	rate, supported := rates[code]
	if !supported {
		return it
	}

	perNight := amount * rate
	for i := range it.DailyItinerary {
		it.DailyItinerary[i].BudgetBreakdown.Accommodation = perNight
	}
	return it
}

func parseNumericString(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
