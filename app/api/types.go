package api

import (
	"context"

	"github.com/chweng/bike-radar/app/database"
	"github.com/chweng/bike-radar/app/ingest"
	"github.com/chweng/bike-radar/app/stations"
)

type IngestRunnerInterface interface {
	Run(ctx context.Context) (ingest.Result, error)
}

var _ IngestRunnerInterface = (*ingest.Pipeline)(nil)

type NearbyQueryInterface interface {
	Run(latitude, longitude, distanceMeters float64, page, limit int) ([]database.Station, error)
}

var _ NearbyQueryInterface = (*stations.NearbyQuery)(nil)

type Handler struct {
	pipeline    IngestRunnerInterface
	nearby      NearbyQueryInterface
	stationRepo database.StationRepository
	statusRepo  database.StatusRepository
	logRepo     database.LogRepository
}
