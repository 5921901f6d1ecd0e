package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripforge/database"
	"tripforge/itinerary"
	"tripforge/logger"
	"tripforge/services"
)

// planner assembles the reconciliation pipeline from the initialized service
// singletons. Offer searchers are wired only when credentials exist, so an
// unconfigured deployment degrades to itineraries without live offers.
func planner() *itinerary.Planner {
	p := &itinerary.Planner{
		Model: services.GetModelClient(),
		Rates: itinerary.DefaultRates,
		Log:   logger.Get(),
	}
	if c := services.GetAmadeusClient(); c.Configured() {
		p.Flights = c
		p.Hotels = c
		p.Carriers = services.GetAirlineDirectory()
	}
	return p
}

type CreateItineraryRequest struct {
	From           string   `json:"from" binding:"required"`
	Destination    string   `json:"destination" binding:"required"`
	StartDate      string   `json:"start_date" binding:"required"`
	Days           int      `json:"days" binding:"required,gt=0"`
	People         int      `json:"people"`
	Budget         float64  `json:"budget" binding:"required,gt=0"`
	Themes         []string `json:"themes" binding:"required,min=1"`
	TimePerDay     string   `json:"time_per_day"`
	TravelMode     string   `json:"travel_mode"`
	Accommodation  string   `json:"accommodation"`
	Language       string   `json:"language"`
	HotelStars     int      `json:"hotel_stars"`
	HotelAmenities []string `json:"hotel_amenities"`
}

func (r CreateItineraryRequest) tripRequest() itinerary.TripRequest {
	return itinerary.TripRequest{
		From:           strings.TrimSpace(r.From),
		Destination:    strings.TrimSpace(r.Destination),
		StartDate:      r.StartDate,
		Days:           r.Days,
		People:         r.People,
		Budget:         r.Budget,
		Themes:         r.Themes,
		TimePerDay:     r.TimePerDay,
		TravelMode:     r.TravelMode,
		Accommodation:  r.Accommodation,
		Language:       r.Language,
		HotelStars:     r.HotelStars,
		HotelAmenities: r.HotelAmenities,
	}.WithDefaults()
}

// CreateItineraryHandler runs the full generation pipeline and persists the
// result. A degraded itinerary (warnings, empty day list) is still a 200; the
// client decides how to surface it.
func CreateItineraryHandler(c *gin.Context) {
	var req CreateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	trip := req.tripRequest()
	result, err := planner().Generate(c.Request.Context(), trip)
	if err != nil {
		logger.Get().Errorw("itinerary generation failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Itinerary generation failed, please retry"})
		return
	}

	rec := &database.ItineraryRecord{
		ID:            uuid.New().String(),
		Itinerary:     result,
		UserSelection: trip,
	}
	if err := database.SaveItinerary(rec); err != nil {
		logger.Get().Errorw("failed to save itinerary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": rec.ID, "itinerary": result})
}

func GetItineraryHandler(c *gin.Context) {
	rec, err := database.GetItinerary(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

type RegenerateRequest struct {
	Instruction string `json:"instruction" binding:"required"`
}

// RegenerateHandler re-enters the pipeline with a prompt embedding the stored
// itinerary plus the change request. The new result replaces the record.
func RegenerateHandler(c *gin.Context) {
	var req RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	rec, err := database.GetItinerary(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
		return
	}

	result, err := planner().Regenerate(c.Request.Context(), rec.Itinerary, rec.UserSelection, req.Instruction)
	if err != nil {
		logger.Get().Errorw("itinerary regeneration failed", "error", err, "id", rec.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Itinerary regeneration failed, please retry"})
		return
	}

	rec.Itinerary = result
	if err := database.SaveItinerary(rec); err != nil {
		logger.Get().Errorw("failed to save itinerary", "error", err, "id", rec.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": rec.ID, "itinerary": result})
}

type SelectHotelRequest struct {
	HotelID string `json:"hotel_id" binding:"required"`
}

// SelectHotelHandler swaps the trip onto one of the stored hotel candidates,
// re-running the pipeline from normalization onward.
func SelectHotelHandler(c *gin.Context) {
	var req SelectHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	rec, err := database.GetItinerary(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
		return
	}

	result, err := planner().SelectHotel(c.Request.Context(), rec.Itinerary, rec.UserSelection, req.HotelID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	rec.Itinerary = result
	if err := database.SaveItinerary(rec); err != nil {
		logger.Get().Errorw("failed to save itinerary", "error", err, "id", rec.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save itinerary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": rec.ID, "itinerary": result})
}
