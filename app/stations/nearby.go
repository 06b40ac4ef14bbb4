package stations

import (
	"errors"
	"math"

	"github.com/chweng/bike-radar/app/database"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Validation errors, raised before any repository call. The HTTP boundary
// maps these to 400 responses by identity.
var (
	ErrInvalidLatitude  = errors.New("invalid latitude provided")
	ErrInvalidLongitude = errors.New("invalid longitude provided")
	ErrInvalidDistance  = errors.New("distance must be a positive number")
	ErrInvalidPage      = errors.New("page must be a positive number")
	ErrInvalidLimit     = errors.New("limit must be a positive number")
)

// NearbyQuery answers "stations within distance D of point (lat, lon)" with
// pagination. Distance computation and result ordering are the repository's
// contract; this use case only validates inputs and computes the offset.
type NearbyQuery struct {
	stationRepo database.StationRepository
}

func NewNearbyQuery(stationRepo database.StationRepository) *NearbyQuery {
	return &NearbyQuery{stationRepo: stationRepo}
}

// Run validates inputs in a fixed order (latitude, longitude, distance,
// page, limit) so the first violated rule determines the reported error,
// then delegates to the repository with offset = (page-1)*limit.
// Repository errors propagate unchanged.
func (q *NearbyQuery) Run(latitude, longitude, distanceMeters float64, page, limit int) ([]database.Station, error) {
	if !isFinite(latitude) || latitude < -90 || latitude > 90 {
		return nil, ErrInvalidLatitude
	}
	if !isFinite(longitude) || longitude < -180 || longitude > 180 {
		return nil, ErrInvalidLongitude
	}
	if !isFinite(distanceMeters) || distanceMeters <= 0 {
		return nil, ErrInvalidDistance
	}
	if page <= 0 {
		return nil, ErrInvalidPage
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	offset := (page - 1) * limit

	return q.stationRepo.FindStationsNearby(latitude, longitude, distanceMeters, limit, offset)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
