package itinerary

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// EnforceDayCount adjusts the day list so its length exactly equals the
// requested trip length. Extra days are truncated; missing days are
// synthesized by deep-copying the last existing day and re-dating it from the
// trip start date. Every adjustment is reported through the returned
// warnings. This is the single enforcement point for the day-count contract.
func EnforceDayCount(it CanonicalItinerary, startDate string, days int) (CanonicalItinerary, []string) {
	var warnings []string
	got := len(it.DailyItinerary)

	switch {
	case got > days:
		it.DailyItinerary = it.DailyItinerary[:days]
		warnings = append(warnings, fmt.Sprintf(
			"model produced %d days for a %d-day trip; dropped the trailing %d", got, days, got-days))

	case got < days:
		var template DayPlan
		if got > 0 {
			template = it.DailyItinerary[got-1]
		}
		for i := got; i < days; i++ {
			day := cloneDay(template)
			if d, err := time.Parse(dateLayout, startDate); err == nil {
				d = d.AddDate(0, 0, i)
				day.Date = d.Format(dateLayout)
				day.DayOfWeek = d.Weekday().String()
			}
			// Only the final day keeps the copied travel leg, modeling
			// the return trip.
			if i != days-1 {
				day.Travel = Travel{}
			}
			it.DailyItinerary = append(it.DailyItinerary, day)
		}
		warnings = append(warnings, fmt.Sprintf(
			"model produced %d days for a %d-day trip; synthesized %d from the last planned day", got, days, days-got))
	}

	it.NumberOfDays = days
	return it, warnings
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// cloneDay deep-copies a day plan so synthesized days never share activity
// slices with their source.
func cloneDay(d DayPlan) DayPlan {
	out := d
	out.Activities = make([]Activity, len(d.Activities))
	copy(out.Activities, d.Activities)
	return out
}
