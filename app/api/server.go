package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, ingestAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, ingestAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, ingestAccessKey string) {
	// Query endpoints
	r.GET("/stations/nearby", handler.GetNearbyStations)
	r.GET("/stations/:sno/status", handler.GetStationStatus)

	// Health and observability endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/logs", handler.GetLogs)

	// Ingestion trigger, guarded when an access key is configured. The key
	// check is a transport concern; the pipeline itself has no notion of it.
	if ingestAccessKey != "" {
		guarded := r.Group("/")
		guarded.Use(authMiddleware(ingestAccessKey))
		guarded.POST("/ingest", handler.PostIngest)
		log.Printf("Ingest endpoint enabled with authentication")
	} else {
		r.POST("/ingest", handler.PostIngest)
		log.Printf("Ingest endpoint enabled without authentication (INGEST_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"nearby": "/stations/nearby?lat=<lat>&lon=<lon>&dist=<meters>[&page=N&limit=N]",
			"status": "/stations/<sno>/status",
			"health": "/health",
			"logs":   "/logs",
			"ingest": "/ingest (POST)",
		}

		c.JSON(200, gin.H{
			"service":     "Bike Radar",
			"description": "YouBike station ingestion and nearby-station query service",
			"endpoints":   endpoints,
			"ingest_auth": map[string]interface{}{
				"enabled": ingestAccessKey != "",
				"header":  "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for the ingest endpoint
func authMiddleware(accessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get access key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Access key required",
				"message": "Provide the key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != accessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid access key",
				"message": "The provided access key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
