package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantAmount float64
		wantCode   string
		wantOK     bool
	}{
		{"dollar symbol", "Cozy room. Price: $120 per night, breakfast included", 120, "USD", true},
		{"euro symbol", "Price: €85 per night", 85, "EUR", true},
		{"pound symbol", "Price: £99.50 per night", 99.50, "GBP", true},
		{"rupee symbol", "Price: ₹4,500 per night", 4500, "INR", true},
		{"yen symbol", "Price: ¥12000 per night", 12000, "JPY", true},
		{"bare ISO code", "Price: AED 300 per night", 300, "AED", true},
		{"lowercase per night", "price: USD 75 PER NIGHT", 75, "USD", true},
		{"fallback without per night", "Great stay. Price: $140 for the room", 140, "USD", true},
		{"thousands separator", "Price: USD 1,250.75 per night", 1250.75, "USD", true},
		{"no price mention", "A lovely boutique hotel near the river", 0, "", false},
		{"number without currency", "Price: 120 per night", 0, "", false},
		{"empty text", "", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, code, ok := ExtractPrice(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantAmount, amount)
				assert.Equal(t, tt.wantCode, code)
			}
		})
	}
}

func reconcilable(notes string, days int) CanonicalItinerary {
	it := CanonicalItinerary{}
	for i := 0; i < days; i++ {
		day := DayPlan{BudgetBreakdown: BudgetBreakdown{Accommodation: 999, FoodDrinks: 40}}
		if i == 0 {
			day.Accommodation.Notes = notes
		}
		it.DailyItinerary = append(it.DailyItinerary, day)
	}
	return it
}

func TestReconcileBudgetConvertsAndApplies(t *testing.T) {
	rates := Rates{"USD": 1, "EUR": 1.10}
	it := ReconcileBudget(reconcilable("Price: €100 per night", 3), rates)

	for _, day := range it.DailyItinerary {
		assert.InDelta(t, 110, day.BudgetBreakdown.Accommodation, 1e-9)
		// Other rollup fields are untouched.
		assert.Equal(t, 40.0, day.BudgetBreakdown.FoodDrinks)
	}
}

// Running the reconciler twice derives from the same notes text, never from
// the already-converted number.
func TestReconcileBudgetIdempotent(t *testing.T) {
	rates := Rates{"USD": 1, "INR": 0.012}

	once := ReconcileBudget(reconcilable("Price: ₹5,000 per night", 2), rates)
	twice := ReconcileBudget(once, rates)

	require.Len(t, twice.DailyItinerary, 2)
	for i := range twice.DailyItinerary {
		assert.Equal(t,
			once.DailyItinerary[i].BudgetBreakdown.Accommodation,
			twice.DailyItinerary[i].BudgetBreakdown.Accommodation)
		assert.InDelta(t, 60, twice.DailyItinerary[i].BudgetBreakdown.Accommodation, 1e-9)
	}
}

func TestReconcileBudgetNoMatchLeavesValues(t *testing.T) {
	it := ReconcileBudget(reconcilable("A charming guesthouse", 2), nil)
	for _, day := range it.DailyItinerary {
		assert.Equal(t, 999.0, day.BudgetBreakdown.Accommodation)
	}
}

func TestReconcileBudgetUnsupportedCurrencyIsNoOp(t *testing.T) {
	it := ReconcileBudget(reconcilable("Price: XYZ 50 per night", 1), Rates{"USD": 1})
	assert.Equal(t, 999.0, it.DailyItinerary[0].BudgetBreakdown.Accommodation)
}

func TestReconcileBudgetEmptyItinerary(t *testing.T) {
	it := ReconcileBudget(CanonicalItinerary{}, nil)
	assert.Empty(t, it.DailyItinerary)
}
