package itinerary

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	mu           sync.Mutex
	nameCalls    [][]string
	urlCalls     []string
	names        map[string]string
	urls         map[string]string
	failNames    bool
	failURLCodes map[string]bool
}

func (d *stubDirectory) AirlineNames(_ context.Context, codes []string) (map[string]string, error) {
	d.mu.Lock()
	d.nameCalls = append(d.nameCalls, codes)
	d.mu.Unlock()
	if d.failNames {
		return nil, fmt.Errorf("reference data unavailable")
	}
	out := map[string]string{}
	for _, c := range codes {
		if n, ok := d.names[c]; ok {
			out[c] = n
		}
	}
	return out, nil
}

func (d *stubDirectory) CheckInURL(_ context.Context, code string) (string, error) {
	d.mu.Lock()
	d.urlCalls = append(d.urlCalls, code)
	d.mu.Unlock()
	if d.failURLCodes[code] {
		return "", fmt.Errorf("lookup failed for %s", code)
	}
	return d.urls[code], nil
}

func twoCarrierOffer() *FlightOffer {
	return &FlightOffer{
		Itineraries: []FlightItinerary{
			{Segments: []FlightSegment{
				{CarrierCode: "LH", Number: "760"},
				{CarrierCode: "AI", Number: "142"},
			}},
			{Segments: []FlightSegment{
				{CarrierCode: "LH", Number: "761"},
			}},
		},
		Price: OfferPrice{GrandTotal: "640.00", Currency: "USD"},
	}
}

func TestMergeOffersResolvesDistinctCarriersOnce(t *testing.T) {
	dir := &stubDirectory{
		names: map[string]string{"LH": "Lufthansa", "AI": "Air India"},
		urls:  map[string]string{"LH": "https://lh.example/checkin", "AI": "https://ai.example/checkin"},
	}

	it := MergeOffers(context.Background(), CanonicalItinerary{}, nil, twoCarrierOffer(), dir, nil)

	require.NotNil(t, it.SelectedFlightOffer)
	assert.Equal(t, map[string]string{"LH": "Lufthansa", "AI": "Air India"}, it.SelectedFlightOffer.AirlineNames)
	assert.Equal(t, "https://lh.example/checkin", it.SelectedFlightOffer.CheckInURLs["LH"])

	// LH appears in two segments but is looked up once.
	require.Len(t, dir.nameCalls, 1)
	assert.ElementsMatch(t, []string{"LH", "AI"}, dir.nameCalls[0])
	assert.ElementsMatch(t, []string{"LH", "AI"}, dir.urlCalls)
}

func TestMergeOffersSkipsAlreadyResolvedCarriers(t *testing.T) {
	dir := &stubDirectory{names: map[string]string{"AI": "Air India"}, urls: map[string]string{}}
	offer := twoCarrierOffer()
	offer.AirlineNames = map[string]string{"LH": "Lufthansa"}
	offer.CheckInURLs = map[string]string{"LH": "https://lh.example/checkin", "AI": "https://ai.example/checkin"}

	it := MergeOffers(context.Background(), CanonicalItinerary{}, nil, offer, dir, nil)

	require.Len(t, dir.nameCalls, 1)
	assert.Equal(t, []string{"AI"}, dir.nameCalls[0])
	assert.Empty(t, dir.urlCalls)
	assert.Equal(t, "Air India", it.SelectedFlightOffer.AirlineNames["AI"])
}

// Individual lookup failures degrade the presentation, never the merge.
func TestMergeOffersSwallowsLookupFailures(t *testing.T) {
	dir := &stubDirectory{
		failNames:    true,
		failURLCodes: map[string]bool{"LH": true},
		urls:         map[string]string{"AI": "https://ai.example/checkin"},
	}

	it := MergeOffers(context.Background(), CanonicalItinerary{}, nil, twoCarrierOffer(), dir, nil)

	require.NotNil(t, it.SelectedFlightOffer)
	assert.Empty(t, it.SelectedFlightOffer.AirlineNames)
	assert.Equal(t, map[string]string{"AI": "https://ai.example/checkin"}, it.SelectedFlightOffer.CheckInURLs)
}

func TestMergeOffersStoresHotelsVerbatimAndDerivesPerNight(t *testing.T) {
	hotels := &HotelBlock{
		CheckIn:  "2025-04-01",
		CheckOut: "2025-04-05",
		Hotels: []HotelCandidate{
			{ID: "H1", Name: "Harbor View", PriceTotal: 400, Currency: "USD"},
			{ID: "H2", Name: "Old Town Inn", PricePerNight: 60, PriceTotal: 240},
		},
	}

	it := MergeOffers(context.Background(), CanonicalItinerary{}, hotels, nil, nil, nil)

	require.NotNil(t, it.AvailableHotels)
	assert.Equal(t, "2025-04-01", it.AvailableHotels.CheckIn)
	assert.InDelta(t, 100, it.AvailableHotels.Hotels[0].PricePerNight, 1e-9)
	// An already-present per-night price is not recomputed.
	assert.InDelta(t, 60, it.AvailableHotels.Hotels[1].PricePerNight, 1e-9)
	// The input block is untouched.
	assert.Zero(t, hotels.Hotels[0].PricePerNight)
}

func TestMergeOffersNilInputs(t *testing.T) {
	it := MergeOffers(context.Background(), CanonicalItinerary{}, nil, nil, nil, nil)
	assert.Nil(t, it.SelectedFlightOffer)
	assert.Nil(t, it.AvailableHotels)
}
