package itinerary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planOfDays(n int) CanonicalItinerary {
	it := CanonicalItinerary{DailyItinerary: []DayPlan{}}
	for i := 0; i < n; i++ {
		it.DailyItinerary = append(it.DailyItinerary, DayPlan{
			Date:       fmt.Sprintf("2025-01-%02d", 10+i),
			ThemeFocus: fmt.Sprintf("day-%d", i+1),
			Activities: []Activity{{Description: fmt.Sprintf("activity-%d", i+1)}},
			Travel:     Travel{Mode: "train", Details: "intercity"},
		})
	}
	return it
}

// Whatever the model produced, the enforced list length equals the request.
func TestEnforceDayCountInvariant(t *testing.T) {
	for _, produced := range []int{0, 1, 3, 5, 9} {
		for _, requested := range []int{1, 3, 5} {
			it, _ := EnforceDayCount(planOfDays(produced), "2025-01-10", requested)
			assert.Len(t, it.DailyItinerary, requested, "produced=%d requested=%d", produced, requested)
			assert.Equal(t, requested, it.NumberOfDays)
		}
	}
}

func TestEnforceTruncationKeepsFirstDaysUntouched(t *testing.T) {
	src := planOfDays(5)
	want := append([]DayPlan{}, src.DailyItinerary[:3]...)

	it, warnings := EnforceDayCount(src, "2025-01-10", 3)

	assert.Equal(t, want, it.DailyItinerary)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "5 days")
}

func TestEnforceSynthesis(t *testing.T) {
	it, warnings := EnforceDayCount(planOfDays(2), "2025-01-10", 5)

	require.Len(t, it.DailyItinerary, 5)
	require.Len(t, warnings, 1)

	assert.Equal(t, "2025-01-12", it.DailyItinerary[2].Date)
	assert.Equal(t, "2025-01-13", it.DailyItinerary[3].Date)
	assert.Equal(t, "2025-01-14", it.DailyItinerary[4].Date)
	assert.Equal(t, "Sunday", it.DailyItinerary[2].DayOfWeek)

	// Synthesized middle days lose the travel leg; the final day keeps it
	// as the return trip.
	assert.True(t, it.DailyItinerary[2].Travel.IsZero())
	assert.True(t, it.DailyItinerary[3].Travel.IsZero())
	assert.False(t, it.DailyItinerary[4].Travel.IsZero())

	// Activities are copied from the last planned day, not shared.
	assert.Equal(t, it.DailyItinerary[1].Activities, it.DailyItinerary[2].Activities)
	it.DailyItinerary[2].Activities[0].Description = "mutated"
	assert.Equal(t, "activity-2", it.DailyItinerary[1].Activities[0].Description)
}

func TestEnforceSynthesisFromEmptyPlan(t *testing.T) {
	it, warnings := EnforceDayCount(planOfDays(0), "2025-06-01", 2)

	require.Len(t, it.DailyItinerary, 2)
	assert.Equal(t, "2025-06-01", it.DailyItinerary[0].Date)
	assert.Equal(t, "2025-06-02", it.DailyItinerary[1].Date)
	require.Len(t, warnings, 1)
}

func TestEnforceExactCountIsNoOp(t *testing.T) {
	src := planOfDays(3)
	it, warnings := EnforceDayCount(src, "2025-01-10", 3)

	assert.Equal(t, src.DailyItinerary, it.DailyItinerary)
	assert.Empty(t, warnings)
}
