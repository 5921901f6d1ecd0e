// Package itinerary implements the reconciliation pipeline that turns a raw
// generative-model response plus live travel offers into a canonical,
// fixed-schema trip plan.
package itinerary

// TripRequest holds the user-supplied trip parameters. It is immutable once
// submitted to the pipeline; no stage mutates it.
type TripRequest struct {
	From           string   `json:"from"`
	Destination    string   `json:"destination"`
	StartDate      string   `json:"start_date"` // YYYY-MM-DD
	Days           int      `json:"days"`
	People         int      `json:"people"`
	Budget         float64  `json:"budget"`
	Themes         []string `json:"themes"`
	TimePerDay     string   `json:"time_per_day"`
	TravelMode     string   `json:"travel_mode"`
	Accommodation  string   `json:"accommodation"`
	Language       string   `json:"language"`
	HotelStars     int      `json:"hotel_stars"`
	HotelAmenities []string `json:"hotel_amenities"`
}

// WithDefaults returns a copy with the documented request defaults applied:
// star rating 3 and a single baseline amenity when unset.
func (r TripRequest) WithDefaults() TripRequest {
	if r.HotelStars < 1 || r.HotelStars > 5 {
		r.HotelStars = 3
	}
	if len(r.HotelAmenities) == 0 {
		r.HotelAmenities = []string{"WIFI"}
	}
	if r.People < 1 {
		r.People = 1
	}
	return r
}

// CanonicalItinerary is the pipeline's output contract. Every field is always
// populated; daily_itinerary length equals number_of_days after enforcement.
type CanonicalItinerary struct {
	From                    string       `json:"from"`
	Destination             string       `json:"destination"`
	StartDate               string       `json:"start_date"`
	NumberOfDays            int          `json:"number_of_days"`
	NumberOfPeople          int          `json:"number_of_people"`
	BudgetReference         *float64     `json:"budget_reference"`
	Themes                  []string     `json:"themes"`
	LanguagePreference      string       `json:"language_preference"`
	TravelModePreference    string       `json:"travel_mode_preference"`
	AccommodationPreference string       `json:"accommodation_preference"`
	Notes                   string       `json:"notes"`
	DailyItinerary          []DayPlan    `json:"daily_itinerary"`
	Warnings                []string     `json:"warnings"`
	SelectedFlightOffer     *FlightOffer `json:"selected_flight_offer,omitempty"`
	AvailableHotels         *HotelBlock  `json:"available_hotels,omitempty"`
}

// DayPlan is one entry of the daily itinerary.
type DayPlan struct {
	Date            string          `json:"date"`
	DayOfWeek       string          `json:"day_of_week"`
	ThemeFocus      string          `json:"theme_focus"`
	Accommodation   Accommodation   `json:"accommodation"`
	Activities      []Activity      `json:"activities"`
	Travel          Travel          `json:"travel"`
	BudgetBreakdown BudgetBreakdown `json:"budget_breakdown"`
}

type Accommodation struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type Activity struct {
	Time        string `json:"time"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type Travel struct {
	Mode    string  `json:"mode"`
	Details string  `json:"details"`
	Price   float64 `json:"price_in_reference_currency"`
}

// IsZero reports whether the travel leg is absent.
func (t Travel) IsZero() bool {
	return t == Travel{}
}

// BudgetBreakdown values are all expressed in the reference currency.
type BudgetBreakdown struct {
	Accommodation float64 `json:"accommodation"`
	FoodDrinks    float64 `json:"food_drinks"`
	Transport     float64 `json:"transport"`
	Miscellaneous float64 `json:"miscellaneous"`
}

// FlightOffer is a passthrough of the provider's offer shape, plus the
// enrichment maps filled in by the offer merger.
type FlightOffer struct {
	ID          string            `json:"id,omitempty"`
	Itineraries []FlightItinerary `json:"itineraries"`
	Price       OfferPrice        `json:"price"`
	AirlineNames map[string]string `json:"airline_names,omitempty"`
	CheckInURLs  map[string]string `json:"check_in_urls,omitempty"`
}

type FlightItinerary struct {
	Duration string          `json:"duration"`
	Segments []FlightSegment `json:"segments"`
}

type FlightSegment struct {
	CarrierCode string         `json:"carrierCode"`
	Number      string         `json:"number"`
	Departure   FlightEndpoint `json:"departure"`
	Arrival     FlightEndpoint `json:"arrival"`
	Duration    string         `json:"duration,omitempty"`
}

type FlightEndpoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type OfferPrice struct {
	GrandTotal string `json:"grandTotal"`
	Currency   string `json:"currency"`
}

// CarrierCodes returns the distinct carrier codes across every segment, in
// first-seen order.
func (f *FlightOffer) CarrierCodes() []string {
	var codes []string
	seen := map[string]bool{}
	for _, it := range f.Itineraries {
		for _, seg := range it.Segments {
			if seg.CarrierCode != "" && !seen[seg.CarrierCode] {
				seen[seg.CarrierCode] = true
				codes = append(codes, seg.CarrierCode)
			}
		}
	}
	return codes
}

// HotelBlock is the available-hotels list together with its stay window.
type HotelBlock struct {
	Hotels   []HotelCandidate `json:"hotels"`
	CheckIn  string           `json:"check_in"`
	CheckOut string           `json:"check_out"`
	CityCode string           `json:"city_code,omitempty"`
}

type HotelCandidate struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Rating       int          `json:"rating"`
	Address      HotelAddress `json:"address"`
	Amenities    []string     `json:"amenities"`
	PriceTotal   float64      `json:"price_total,omitempty"`
	PricePerNight float64     `json:"price_per_night,omitempty"`
	Currency     string       `json:"currency,omitempty"`
}

type HotelAddress struct {
	Lines       []string `json:"lines,omitempty"`
	City        string   `json:"city"`
	CountryCode string   `json:"country_code"`
	Full        string   `json:"full"`
}

// FlightQuery and HotelQuery are the search inputs handed to the external
// offer providers.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
}

type HotelQuery struct {
	City      string
	Stars     int
	Amenities []string
	CheckIn   string
	CheckOut  string
	Adults    int
}
