package itinerary

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ModelClient is the generative-model collaborator: one blocking round trip
// per generation, returning the provider payload undecoded into any fixed
// shape.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (any, error)
}

// FlightSearcher and HotelSearcher are the offer providers. Either may be
// absent (nil) on a Planner; a failed search degrades to absent data.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, q FlightQuery) ([]FlightOffer, error)
}

type HotelSearcher interface {
	FindHotels(ctx context.Context, q HotelQuery) (*HotelBlock, error)
}

// Planner wires the reconciliation pipeline to its external collaborators.
// It is stateless between invocations; the only shared state within one run
// is the immutable TripRequest.
type Planner struct {
	Model    ModelClient
	Flights  FlightSearcher
	Hotels   HotelSearcher
	Carriers CarrierDirectory
	Rates    Rates
	Log      *zap.SugaredLogger
}

// Generate is the single entry point: it runs the full pipeline and always
// returns a usable, possibly degraded, itinerary. The only error it can
// return is the model call itself failing before any response is obtained.
func (p *Planner) Generate(ctx context.Context, req TripRequest) (CanonicalItinerary, error) {
	req = req.WithDefaults()

	resp, err := p.Model.Generate(ctx, BuildGeneratePrompt(req))
	if err != nil {
		return CanonicalItinerary{}, fmt.Errorf("model call failed: %w", err)
	}

	return p.reconcile(ctx, req, resp), nil
}

// Regenerate re-enters the pipeline with a model response produced from a
// prompt embedding the existing itinerary plus the change request.
func (p *Planner) Regenerate(ctx context.Context, existing CanonicalItinerary, req TripRequest, instruction string) (CanonicalItinerary, error) {
	req = req.WithDefaults()

	resp, err := p.Model.Generate(ctx, BuildRegeneratePrompt(existing, instruction))
	if err != nil {
		return CanonicalItinerary{}, fmt.Errorf("model call failed: %w", err)
	}

	return p.reconcile(ctx, req, resp), nil
}

// SelectHotel swaps the trip onto one of the stored hotel candidates. The
// stored itinerary is never patched in place: the choice augments the input
// and the pipeline re-runs from normalization onward, so the budget rollup
// re-derives from the new per-night price.
func (p *Planner) SelectHotel(ctx context.Context, existing CanonicalItinerary, req TripRequest, hotelID string) (CanonicalItinerary, error) {
	req = req.WithDefaults()

	if existing.AvailableHotels == nil {
		return existing, fmt.Errorf("itinerary has no hotel candidates")
	}
	var chosen *HotelCandidate
	for i := range existing.AvailableHotels.Hotels {
		if existing.AvailableHotels.Hotels[i].ID == hotelID {
			chosen = &existing.AvailableHotels.Hotels[i]
			break
		}
	}
	if chosen == nil {
		return existing, fmt.Errorf("hotel %q is not among the stored candidates", hotelID)
	}

	augmented := existing
	augmented.DailyItinerary = make([]DayPlan, len(existing.DailyItinerary))
	copy(augmented.DailyItinerary, existing.DailyItinerary)
	for i := range augmented.DailyItinerary {
		augmented.DailyItinerary[i].Accommodation = Accommodation{
			Name:     chosen.Name,
			Location: hotelLocation(*chosen),
			Notes:    hotelPriceNote(*chosen),
		}
	}

	it := Normalize(toLooseMap(augmented))
	fillFromRequest(&it, req)

	it, warnings := EnforceDayCount(it, req.StartDate, req.Days)
	it = MergeOffers(ctx, it, existing.AvailableHotels, existing.SelectedFlightOffer, p.Carriers, p.Log)
	it = ReconcileBudget(it, p.Rates)

	it.Warnings = append(it.Warnings, warnings...)
	return it, nil
}

func hotelLocation(h HotelCandidate) string {
	if h.Address.Full != "" {
		return h.Address.Full
	}
	return h.Address.City
}

func hotelPriceNote(h HotelCandidate) string {
	if h.PricePerNight <= 0 {
		return ""
	}
	currency := h.Currency
	if currency == "" {
		currency = ReferenceCurrency
	}
	return fmt.Sprintf("Price: %s %.2f per night", currency, h.PricePerNight)
}

func (p *Planner) reconcile(ctx context.Context, req TripRequest, resp any) CanonicalItinerary {
	// Both enrichment searches are independent of the parse; run them while
	// the response is being repaired.
	hotels, flight, searchWarnings := p.searchOffers(ctx, req)

	var warnings []string
	warnings = append(warnings, searchWarnings...)

	var parsed map[string]any
	if structured, ok := StructuredItinerary(resp); ok {
		parsed = structured
	} else if text := ExtractText(resp); text != nil {
		parsed = RecoverJSON(*text)
	}

	var it CanonicalItinerary
	if parsed == nil {
		// Unparseable response: the one structurally minimal case. The
		// empty day list is what callers surface as a generation failure.
		it = fallbackItinerary(req)
		warnings = append(warnings, "model response could not be parsed as an itinerary")
	} else {
		it = Normalize(parsed)
		fillFromRequest(&it, req)

		var enforceWarnings []string
		it, enforceWarnings = EnforceDayCount(it, req.StartDate, req.Days)
		warnings = append(warnings, enforceWarnings...)
	}

	it = MergeOffers(ctx, it, hotels, flight, p.Carriers, p.Log)
	it = ReconcileBudget(it, p.Rates)

	it.Warnings = append(it.Warnings, warnings...)
	return it
}

// searchOffers issues the hotel and flight searches concurrently. Failures
// convert to warnings plus absent data, never a pipeline error.
func (p *Planner) searchOffers(ctx context.Context, req TripRequest) (*HotelBlock, *FlightOffer, []string) {
	var (
		hotels   *HotelBlock
		flight   *FlightOffer
		warnings []string
		mu       sync.Mutex
		wg       sync.WaitGroup
	)

	returnDate := addDays(req.StartDate, req.Days)

	if p.Flights != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			offers, err := p.Flights.SearchFlights(ctx, FlightQuery{
				Origin:        req.From,
				Destination:   req.Destination,
				DepartureDate: req.StartDate,
				ReturnDate:    returnDate,
				Adults:        req.People,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, "flight offers not available: "+err.Error())
				return
			}
			if len(offers) > 0 {
				flight = &offers[0]
			}
		}()
	}

	if p.Hotels != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			block, err := p.Hotels.FindHotels(ctx, HotelQuery{
				City:      req.Destination,
				Stars:     req.HotelStars,
				Amenities: req.HotelAmenities,
				CheckIn:   req.StartDate,
				CheckOut:  returnDate,
				Adults:    req.People,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, "hotel offers not available: "+err.Error())
				return
			}
			hotels = block
		}()
	}

	wg.Wait()
	return hotels, flight, warnings
}

// fallbackItinerary builds the schema-valid minimal itinerary straight from
// the request when the model response cannot be parsed.
func fallbackItinerary(req TripRequest) CanonicalItinerary {
	budget := req.Budget
	return CanonicalItinerary{
		From:                    req.From,
		Destination:             req.Destination,
		StartDate:               req.StartDate,
		NumberOfDays:            req.Days,
		NumberOfPeople:          req.People,
		BudgetReference:         &budget,
		Themes:                  append([]string{}, req.Themes...),
		LanguagePreference:      req.Language,
		TravelModePreference:    req.TravelMode,
		AccommodationPreference: req.Accommodation,
		DailyItinerary:          []DayPlan{},
		Warnings:                []string{},
	}
}

// fillFromRequest backfills scalar fields the model omitted with the request
// values, the best available source for them.
func fillFromRequest(it *CanonicalItinerary, req TripRequest) {
	if it.From == "" {
		it.From = req.From
	}
	if it.Destination == "" {
		it.Destination = req.Destination
	}
	if it.StartDate == "" {
		it.StartDate = req.StartDate
	}
	if it.NumberOfPeople == 0 {
		it.NumberOfPeople = req.People
	}
	if it.BudgetReference == nil {
		b := req.Budget
		it.BudgetReference = &b
	}
	if len(it.Themes) == 0 {
		it.Themes = append([]string{}, req.Themes...)
	}
	if it.LanguagePreference == "" {
		it.LanguagePreference = req.Language
	}
	if it.TravelModePreference == "" {
		it.TravelModePreference = req.TravelMode
	}
	if it.AccommodationPreference == "" {
		it.AccommodationPreference = req.Accommodation
	}
}

func addDays(date string, days int) string {
	d, err := parseDate(date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, days).Format(dateLayout)
}
