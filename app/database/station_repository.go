package database

import (
	"fmt"
)

// StationRepo handles database operations for station metadata
type StationRepo struct {
	db *DB
}

var _ StationRepository = (*StationRepo)(nil)

// NewStationRepository creates a new station repository
func NewStationRepository(db *DB) *StationRepo {
	return &StationRepo{db: db}
}

// UpsertStations inserts or updates station metadata keyed by sno.
// Conflicts resolve by overwrite, so repeated runs converge to the latest
// feed values. The batch runs in a single transaction.
func (r *StationRepo) UpsertStations(stations []StationUpsert) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO stations (
			sno, name_zh, name_en, area_zh, area_en, address_zh, address_en,
			total_capacity, latitude, longitude
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sno) DO UPDATE SET
			name_zh = EXCLUDED.name_zh,
			name_en = EXCLUDED.name_en,
			area_zh = EXCLUDED.area_zh,
			area_en = EXCLUDED.area_en,
			address_zh = EXCLUDED.address_zh,
			address_en = EXCLUDED.address_en,
			total_capacity = EXCLUDED.total_capacity,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare station upsert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stations {
		_, err := stmt.Exec(s.Sno, s.NameZh, s.NameEn, s.AreaZh, s.AreaEn,
			s.AddressZh, s.AddressEn, s.TotalCapacity, s.Latitude, s.Longitude)
		if err != nil {
			return fmt.Errorf("failed to upsert station %s: %w", s.Sno, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit station upsert: %w", err)
	}

	return nil
}

// FindStationsNearby returns stations within distanceMeters of the given
// point, ordered by distance ascending. Distance is computed with the
// haversine formula directly in SQL, so no PostGIS extension is required.
func (r *StationRepo) FindStationsNearby(latitude, longitude, distanceMeters float64, limit, offset int) ([]Station, error) {
	rows, err := r.db.Query(`
		SELECT sno, name_zh, name_en, area_zh, area_en, address_zh, address_en,
		       total_capacity, latitude, longitude, created_at, updated_at
		FROM (
			SELECT s.*,
			       12742000 * asin(sqrt(
			           pow(sin(radians(s.latitude - $1) / 2), 2) +
			           cos(radians($1)) * cos(radians(s.latitude)) *
			           pow(sin(radians(s.longitude - $2) / 2), 2)
			       )) AS distance_m
			FROM stations s
		) nearby
		WHERE distance_m <= $3
		ORDER BY distance_m ASC
		LIMIT $4 OFFSET $5
	`, latitude, longitude, distanceMeters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby stations: %w", err)
	}
	defer rows.Close()

	var stations []Station
	for rows.Next() {
		var s Station
		err := rows.Scan(
			&s.Sno, &s.NameZh, &s.NameEn, &s.AreaZh, &s.AreaEn,
			&s.AddressZh, &s.AddressEn, &s.TotalCapacity,
			&s.Latitude, &s.Longitude, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan station row: %w", err)
		}
		stations = append(stations, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating station rows: %w", err)
	}

	return stations, nil
}

// GetStationCount returns the total number of stations
func (r *StationRepo) GetStationCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM stations").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get station count: %w", err)
	}
	return count, nil
}
