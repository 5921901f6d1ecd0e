package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripforge/services"
)

type RouteRequest struct {
	Locations []string `json:"locations" binding:"required,min=2"`
	Mode      string   `json:"mode"`
}

// RouteHandler resolves a route through itinerary stops for the map display.
// This is a passthrough to the routing provider, outside the reconciliation
// pipeline.
func RouteHandler(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := services.GetRouteClient().ComputeRoute(c.Request.Context(), req.Locations, req.Mode)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
