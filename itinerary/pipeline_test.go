package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubModel struct {
	resp    any
	err     error
	prompts []string
}

func (m *stubModel) Generate(_ context.Context, prompt string) (any, error) {
	m.prompts = append(m.prompts, prompt)
	return m.resp, m.err
}

type stubFlights struct {
	offers []FlightOffer
	err    error
}

func (s *stubFlights) SearchFlights(_ context.Context, _ FlightQuery) ([]FlightOffer, error) {
	return s.offers, s.err
}

type stubHotels struct {
	block *HotelBlock
	err   error
}

func (s *stubHotels) FindHotels(_ context.Context, _ HotelQuery) (*HotelBlock, error) {
	return s.block, s.err
}

func testRequest() TripRequest {
	return TripRequest{
		From:        "DEL",
		Destination: "GOI",
		StartDate:   "2025-03-01",
		Days:        3,
		People:      2,
		Budget:      50000,
		Themes:      []string{"beach"},
	}
}

const modelPlan = "```json\n" + `{
  "from": "DEL",
  "destination": "GOI",
  "start_date": "2025-03-01",
  "number_of_days": 2,
  "daily_itinerary": [
    {
      "date": "2025-03-01",
      "day_of_week": "Saturday",
      "accommodation": {"name": "Seaside Inn", "notes": "Price: $90 per night"},
      "activities": [{"time": "10:00", "description": "beach walk"}],
      "travel": {"mode": "flight", "details": "arrival"}
    },
    {
      "date": "2025-03-02",
      "day_of_week": "Sunday",
      "activities": [{"time": "09:00", "description": "fort visit"}],
      "travel": {"mode": "flight", "details": "departure"}
    }
  ]
}` + "\n```"

func TestGenerateFullPipeline(t *testing.T) {
	p := &Planner{
		Model: &stubModel{resp: modelPlan},
		Flights: &stubFlights{offers: []FlightOffer{{
			Itineraries: []FlightItinerary{{Segments: []FlightSegment{{CarrierCode: "AI", Number: "883"}}}},
			Price:       OfferPrice{GrandTotal: "210.00", Currency: "USD"},
		}}},
		Hotels: &stubHotels{block: &HotelBlock{
			CheckIn:  "2025-03-01",
			CheckOut: "2025-03-04",
			Hotels:   []HotelCandidate{{ID: "H1", Name: "Seaside Inn", PriceTotal: 270, Currency: "USD"}},
		}},
		Carriers: &stubDirectory{names: map[string]string{"AI": "Air India"}, urls: map[string]string{}},
		Rates:    Rates{"USD": 1},
	}

	it, err := p.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	// Day count enforced from 2 to 3, with the synthesis recorded.
	require.Len(t, it.DailyItinerary, 3)
	assert.Equal(t, 3, it.NumberOfDays)
	require.Len(t, it.Warnings, 1)
	assert.Contains(t, it.Warnings[0], "synthesized")
	assert.Equal(t, "2025-03-03", it.DailyItinerary[2].Date)

	// Offers merged with carrier enrichment.
	require.NotNil(t, it.SelectedFlightOffer)
	assert.Equal(t, "Air India", it.SelectedFlightOffer.AirlineNames["AI"])
	require.NotNil(t, it.AvailableHotels)
	assert.InDelta(t, 90, it.AvailableHotels.Hotels[0].PricePerNight, 1e-9)

	// Budget reconciled from the first day's accommodation notes.
	for _, day := range it.DailyItinerary {
		assert.InDelta(t, 90, day.BudgetBreakdown.Accommodation, 1e-9)
	}

	// Request scalars backfill whatever the model omitted.
	assert.Equal(t, 2, it.NumberOfPeople)
	require.NotNil(t, it.BudgetReference)
	assert.Equal(t, 50000.0, *it.BudgetReference)
}

// An unparseable response still yields a schema-valid itinerary carrying the
// request fields, an empty day list and exactly one warning.
func TestGenerateUnparseableResponseFallback(t *testing.T) {
	p := &Planner{Model: &stubModel{resp: "I cannot help with that."}}

	it, err := p.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Empty(t, it.DailyItinerary)
	require.Len(t, it.Warnings, 1)
	assert.Contains(t, it.Warnings[0], "could not be parsed")
	assert.Equal(t, "DEL", it.From)
	assert.Equal(t, "GOI", it.Destination)
	assert.Equal(t, "2025-03-01", it.StartDate)
	assert.Equal(t, 3, it.NumberOfDays)
	assert.Equal(t, 2, it.NumberOfPeople)
	assert.Equal(t, []string{"beach"}, it.Themes)
}

func TestGenerateModelFailurePropagates(t *testing.T) {
	p := &Planner{Model: &stubModel{err: fmt.Errorf("connection refused")}}

	_, err := p.Generate(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model call failed")
}

// Search failures convert to warnings plus absent data, never an error.
func TestGenerateSearchFailuresDegrade(t *testing.T) {
	p := &Planner{
		Model:   &stubModel{resp: modelPlan},
		Flights: &stubFlights{err: fmt.Errorf("quota exceeded")},
		Hotels:  &stubHotels{err: fmt.Errorf("city not found")},
	}

	it, err := p.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Nil(t, it.SelectedFlightOffer)
	assert.Nil(t, it.AvailableHotels)

	var flightWarn, hotelWarn bool
	for _, w := range it.Warnings {
		if w == "flight offers not available: quota exceeded" {
			flightWarn = true
		}
		if w == "hotel offers not available: city not found" {
			hotelWarn = true
		}
	}
	assert.True(t, flightWarn)
	assert.True(t, hotelWarn)
}

func TestGenerateStructuredFastPath(t *testing.T) {
	structured := map[string]any{
		"itinerary": map[string]any{
			"destination":    "GOI",
			"number_of_days": float64(3),
			"daily_itinerary": []any{
				map[string]any{"date": "2025-03-01"},
				map[string]any{"date": "2025-03-02"},
				map[string]any{"date": "2025-03-03"},
			},
		},
	}
	p := &Planner{Model: &stubModel{resp: structured}}

	it, err := p.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Len(t, it.DailyItinerary, 3)
	assert.Empty(t, it.Warnings)
}

func TestRegenerateEmbedsExistingItinerary(t *testing.T) {
	model := &stubModel{resp: modelPlan}
	p := &Planner{Model: model}

	existing := CanonicalItinerary{Destination: "GOI", Notes: "original notes"}
	_, err := p.Regenerate(context.Background(), existing, testRequest(), "make day 2 food focused")
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "original notes")
	assert.Contains(t, model.prompts[0], "make day 2 food focused")
}

func TestSelectHotelRewritesAccommodationAndBudget(t *testing.T) {
	p := &Planner{Rates: Rates{"USD": 1}}

	existing := CanonicalItinerary{
		From:           "DEL",
		Destination:    "GOI",
		StartDate:      "2025-03-01",
		NumberOfDays:   3,
		NumberOfPeople: 2,
		DailyItinerary: []DayPlan{
			{Date: "2025-03-01", Accommodation: Accommodation{Name: "Seaside Inn"}},
			{Date: "2025-03-02"},
			{Date: "2025-03-03"},
		},
		AvailableHotels: &HotelBlock{
			CheckIn:  "2025-03-01",
			CheckOut: "2025-03-04",
			Hotels: []HotelCandidate{
				{ID: "H1", Name: "Seaside Inn", PricePerNight: 90, Currency: "USD"},
				{ID: "H2", Name: "Harbor View", PricePerNight: 130, Currency: "USD",
					Address: HotelAddress{Full: "Dock Road, Panaji", City: "Panaji", CountryCode: "IN"}},
			},
		},
	}

	it, err := p.SelectHotel(context.Background(), existing, testRequest(), "H2")
	require.NoError(t, err)

	require.Len(t, it.DailyItinerary, 3)
	for _, day := range it.DailyItinerary {
		assert.Equal(t, "Harbor View", day.Accommodation.Name)
		assert.InDelta(t, 130, day.BudgetBreakdown.Accommodation, 1e-9)
	}
	// The candidate list survives for further swaps.
	require.NotNil(t, it.AvailableHotels)
	assert.Len(t, it.AvailableHotels.Hotels, 2)
}

func TestSelectHotelUnknownCandidate(t *testing.T) {
	p := &Planner{}
	existing := CanonicalItinerary{AvailableHotels: &HotelBlock{}}

	_, err := p.SelectHotel(context.Background(), existing, testRequest(), "nope")
	require.Error(t, err)
}

// The persisted record shape survives a storage round trip unchanged.
func TestItineraryJSONRoundTrip(t *testing.T) {
	p := &Planner{
		Model: &stubModel{resp: modelPlan},
		Hotels: &stubHotels{block: &HotelBlock{
			CheckIn:  "2025-03-01",
			CheckOut: "2025-03-04",
			Hotels:   []HotelCandidate{{ID: "H1", Name: "Seaside Inn", PriceTotal: 270, Currency: "USD"}},
		}},
		Rates: Rates{"USD": 1},
	}

	original, err := p.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var reloaded CanonicalItinerary
	require.NoError(t, json.Unmarshal(data, &reloaded))
	assert.Equal(t, original, reloaded)
}
