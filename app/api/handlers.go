package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/chweng/bike-radar/app/cfg"
	"github.com/chweng/bike-radar/app/database"
	"github.com/chweng/bike-radar/app/ingest"
	"github.com/chweng/bike-radar/app/stations"
	"github.com/gin-gonic/gin"
)

const recentLogLimit = 20

func NewHandler(pipeline IngestRunnerInterface, nearby NearbyQueryInterface,
	stationRepo database.StationRepository, statusRepo database.StatusRepository,
	logRepo database.LogRepository) *Handler {
	return &Handler{
		pipeline:    pipeline,
		nearby:      nearby,
		stationRepo: stationRepo,
		statusRepo:  statusRepo,
		logRepo:     logRepo,
	}
}

// PostIngest triggers one ingestion run and reports its outcome. The
// pipeline has already written its own run log by the time this returns.
func (h *Handler) PostIngest(c *gin.Context) {
	result, err := h.pipeline.Run(c.Request.Context())
	if err != nil {
		slog.Error("Ingestion run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": ingest.StatusFailure,
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetNearbyStations answers proximity queries. Required parameters: lat,
// lon, dist. Optional: page (default 1), limit (default 10). Any missing or
// invalid parameter yields a 400 with a descriptive message before any
// repository call.
func (h *Handler) GetNearbyStations(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	distStr := c.Query("dist")

	if latStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'lat' is missing."})
		return
	}
	if lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'lon' is missing."})
		return
	}
	if distStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'dist' is missing."})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'lat' must be a valid number."})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'lon' must be a valid number."})
		return
	}
	dist, err := strconv.ParseFloat(distStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'dist' must be a valid number."})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(stations.DefaultPage)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": stations.ErrInvalidPage.Error()})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(stations.DefaultLimit)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": stations.ErrInvalidLimit.Error()})
		return
	}

	result, err := h.nearby.Run(lat, lon, dist, page, limit)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("Nearby station query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred."})
		return
	}

	if result == nil {
		result = []database.Station{}
	}

	c.JSON(http.StatusOK, result)
}

// GetStationStatus returns the most recent availability snapshots for one
// station, newest first.
func (h *Handler) GetStationStatus(c *gin.Context) {
	sno := c.Param("sno")
	if sno == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing station number parameter"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": stations.ErrInvalidLimit.Error()})
		return
	}

	snapshots, err := h.statusRepo.GetLatestSnapshots(sno, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_snapshots", "station", sno, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if snapshots == nil {
		snapshots = []database.StatusSnapshot{}
	}

	c.JSON(http.StatusOK, gin.H{
		"station_sno": sno,
		"snapshots":   snapshots,
		"total":       len(snapshots),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.GetVersion(),
	}

	if stationCount, err := h.stationRepo.GetStationCount(); err == nil {
		health["stations"] = stationCount
	}
	if snapshotCount, err := h.statusRepo.GetSnapshotCount(); err == nil {
		health["snapshots"] = snapshotCount
	}

	c.JSON(http.StatusOK, health)
}

// GetLogs exposes recent ingestion runs for observability.
func (h *Handler) GetLogs(c *gin.Context) {
	logs, err := h.logRepo.GetRecentLogs(recentLogLimit)
	if err != nil {
		slog.Error("Database error", "operation", "get_logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if logs == nil {
		logs = []database.IngestLog{}
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
	})
}

func isValidationError(err error) bool {
	return errors.Is(err, stations.ErrInvalidLatitude) ||
		errors.Is(err, stations.ErrInvalidLongitude) ||
		errors.Is(err, stations.ErrInvalidDistance) ||
		errors.Is(err, stations.ErrInvalidPage) ||
		errors.Is(err, stations.ErrInvalidLimit)
}
