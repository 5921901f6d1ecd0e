package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuildGeneratePrompt renders the trip parameters into the generation prompt.
// The schema block keeps the model output close enough to the canonical shape
// that the normalizer's precedence chains usually hit their first choice.
func BuildGeneratePrompt(req TripRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a travel planner. Create a day-by-day itinerary as a single JSON object.\n\n")
	fmt.Fprintf(&b, "Trip: %s to %s, starting %s, %d day(s), %d traveler(s), budget %.0f %s.\n",
		req.From, req.Destination, req.StartDate, req.Days, req.People, req.Budget, ReferenceCurrency)
	if len(req.Themes) > 0 {
		fmt.Fprintf(&b, "Themes: %s.\n", strings.Join(req.Themes, ", "))
	}
	if req.TimePerDay != "" {
		fmt.Fprintf(&b, "Available time per day: %s.\n", req.TimePerDay)
	}
	if req.TravelMode != "" {
		fmt.Fprintf(&b, "Preferred travel mode: %s.\n", req.TravelMode)
	}
	if req.Accommodation != "" {
		fmt.Fprintf(&b, "Accommodation preference: %s.\n", req.Accommodation)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, "Respond in %s.\n", req.Language)
	}

	b.WriteString(`
Respond with JSON only, no prose, matching:
{
  "from": "", "destination": "", "start_date": "YYYY-MM-DD",
  "number_of_days": 0, "number_of_people": 0, "budget_reference": 0,
  "themes": [], "language_preference": "", "travel_mode_preference": "",
  "accommodation_preference": "", "notes": "",
  "daily_itinerary": [
    {
      "date": "YYYY-MM-DD", "day_of_week": "", "theme_focus": "",
      "accommodation": {"name": "", "location": "", "notes": "Price: $120 per night"},
      "activities": [{"time": "", "category": "", "description": "", "location": ""}],
      "travel": {"mode": "", "details": "", "price_in_reference_currency": 0},
      "budget_breakdown": {"accommodation": 0, "food_drinks": 0, "transport": 0, "miscellaneous": 0}
    }
  ]
}`)

	return b.String()
}

// BuildRegeneratePrompt embeds the existing itinerary plus the free-text
// change instruction so the model rewrites rather than starts over.
func BuildRegeneratePrompt(existing CanonicalItinerary, instruction string) string {
	current, err := json.Marshal(existing)
	if err != nil {
		current = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("You are a travel planner. Here is an existing itinerary as JSON:\n\n")
	b.Write(current)
	fmt.Fprintf(&b, "\n\nApply this change request: %s\n\n", instruction)
	b.WriteString("Respond with the full updated itinerary as JSON only, same schema, no prose.")
	return b.String()
}
