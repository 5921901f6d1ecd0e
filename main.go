package main

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tripforge/database"
	"tripforge/handlers"
	"tripforge/logger"
	"tripforge/services"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		logger.Get().Info("no .env file found, using environment variables")
	}
	defer logger.Close() //nolint:errcheck

	database.InitDB()
	services.InitAmadeus()
	services.InitAirlines()
	services.InitModel()
	services.InitRoutes()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.SetTrustedProxies([]string{"0.0.0.0/0"}) //nolint:errcheck

	// CORS — allow configured frontend origins
	frontendURLs := os.Getenv("FRONTEND_URL")
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if frontendURLs != "" {
		for _, u := range strings.Split(frontendURLs, ",") {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthHandler)
		api.POST("/itineraries", handlers.CreateItineraryHandler)
		api.GET("/itineraries/:id", handlers.GetItineraryHandler)
		api.POST("/itineraries/:id/regenerate", handlers.RegenerateHandler)
		api.POST("/itineraries/:id/hotel", handlers.SelectHotelHandler)
		api.GET("/itineraries/:id/pdf", handlers.DownloadPDFHandler)
		api.POST("/route", handlers.RouteHandler)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Get().Infow("TripForge backend starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		logger.Get().Fatalw("failed to start server", "error", err)
	}
}
