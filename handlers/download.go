package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripforge/database"
	"tripforge/logger"
	"tripforge/services"
)

// DownloadPDFHandler renders the stored itinerary to PDF on first request and
// caches the bytes against the record.
func DownloadPDFHandler(c *gin.Context) {
	id := c.Param("id")

	pdfData, err := database.GetItineraryPDF(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
		return
	}

	if len(pdfData) == 0 {
		rec, err := database.GetItinerary(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Itinerary not found"})
			return
		}
		pdfData, err = services.GeneratePDFBytes(rec.Itinerary)
		if err != nil {
			logger.Get().Errorw("PDF generation failed", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
		if err := database.UpdateItineraryPDF(id, pdfData); err != nil {
			logger.Get().Warnw("failed to cache PDF", "error", err, "id", id)
		}
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=tripforge-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfData)
}

func HealthHandler(c *gin.Context) {
	db := database.DB
	dbStatus := "ok"
	if db == nil {
		dbStatus = "not initialized"
	} else if err := db.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "TripForge API",
		"database": dbStatus,
	})
}
