package itinerary

import (
	"encoding/json"
	"math"
)

// Normalize maps a loosely-shaped parsed object onto the canonical schema.
// Every field takes the first usable value along its precedence chain and
// falls back to a documented default (0 for counts, nil for the budget, ""
// for strings, empty slice for arrays). Total function: any input, including
// nil, yields a structurally valid itinerary.
func Normalize(src any) CanonicalItinerary {
	m, _ := src.(map[string]any)

	it := CanonicalItinerary{
		From:                    firstString(m, "from", "origin", "source"),
		Destination:             firstString(m, "destination", "location", "city"),
		StartDate:               firstString(m, "start_date", "startDate", "date"),
		NumberOfPeople:          firstInt(m, "number_of_people", "no_of_travellers", "people", "travelers"),
		Themes:                  stringList(firstVal(m, "themes", "theme")),
		LanguagePreference:      firstString(m, "language_preference", "language"),
		TravelModePreference:    firstString(m, "travel_mode_preference", "travel_mode"),
		AccommodationPreference: firstString(m, "accommodation_preference", "accommodation_type"),
		Notes:                   firstString(m, "notes", "summary", "overview"),
		DailyItinerary:          []DayPlan{},
		Warnings:                []string{},
	}

	if b, ok := finiteNumber(firstVal(m, "budget_reference", "budget")); ok {
		it.BudgetReference = &b
	}

	for _, raw := range anyList(firstVal(m, "daily_itinerary", "itinerary", "days", "daily_plan")) {
		it.DailyItinerary = append(it.DailyItinerary, normalizeDay(raw))
	}

	// Day count: explicit field, then the nested trip-details shape, then
	// the day-plan length, then zero.
	it.NumberOfDays = firstInt(m, "number_of_days", "no_of_days", "days_count")
	if it.NumberOfDays == 0 {
		if nested, ok := firstVal(m, "trip_details", "trip").(map[string]any); ok {
			it.NumberOfDays = firstInt(nested, "number_of_days", "no_of_days", "days")
		}
	}
	if it.NumberOfDays == 0 {
		it.NumberOfDays = len(it.DailyItinerary)
	}

	return it
}

func normalizeDay(src any) DayPlan {
	m, _ := src.(map[string]any)

	day := DayPlan{
		Date:       firstString(m, "date", "day_date"),
		DayOfWeek:  firstString(m, "day_of_week", "weekday", "day"),
		ThemeFocus: firstString(m, "theme_focus", "theme", "title"),
		Activities: []Activity{},
	}

	if acc, ok := firstVal(m, "accommodation", "hotel", "stay").(map[string]any); ok {
		day.Accommodation = Accommodation{
			Name:     firstString(acc, "name", "hotel_name"),
			Location: firstString(acc, "location", "address"),
			Notes:    firstString(acc, "notes", "description"),
		}
	}

	for _, raw := range anyList(firstVal(m, "activities", "plan", "schedule")) {
		am, _ := raw.(map[string]any)
		day.Activities = append(day.Activities, Activity{
			Time:        firstString(am, "time", "time_of_day"),
			Category:    firstString(am, "category", "type"),
			Description: firstString(am, "description", "activity", "name"),
			Location:    firstString(am, "location", "place"),
		})
	}

	if tr, ok := firstVal(m, "travel", "transport").(map[string]any); ok {
		day.Travel = Travel{
			Mode:    firstString(tr, "mode", "travel_mode"),
			Details: firstString(tr, "details", "description"),
		}
		if p, ok := finiteNumber(firstVal(tr, "price_in_reference_currency", "price", "cost")); ok {
			day.Travel.Price = p
		}
	}

	if bb, ok := firstVal(m, "budget_breakdown", "budget").(map[string]any); ok {
		day.BudgetBreakdown = BudgetBreakdown{
			Accommodation: firstFloat(bb, "accommodation", "stay"),
			FoodDrinks:    firstFloat(bb, "food_drinks", "food", "meals"),
			Transport:     firstFloat(bb, "transport", "travel"),
			Miscellaneous: firstFloat(bb, "miscellaneous", "misc", "other"),
		}
	}

	return day
}

// toLooseMap round-trips a typed itinerary through JSON so interactive edits
// can re-enter the pipeline at the normalizer like any model payload.
func toLooseMap(it CanonicalItinerary) map[string]any {
	b, err := json.Marshal(it)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// ---- loose accessors ----
//
// Upstream payloads have no fixed schema, so every accessor handles the
// opaque case by returning a default instead of failing.

func firstVal(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstInt(m map[string]any, keys ...string) int {
	for _, k := range keys {
		if n, ok := finiteNumber(m[k]); ok && n > 0 {
			return int(n)
		}
	}
	return 0
}

func firstFloat(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if n, ok := finiteNumber(m[k]); ok {
			return n
		}
	}
	return 0
}

// finiteNumber coerces JSON numbers (and the occasional numeric string the
// model emits) to a finite float64.
func finiteNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case string:
		var f float64
		var ok bool
		f, ok = parseNumericString(n)
		return f, ok
	}
	return 0, false
}

func anyList(v any) []any {
	l, _ := v.([]any)
	return l
}

// stringList coerces a themes-style value: an array of strings, or a single
// string, into a slice.
func stringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	case string:
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
