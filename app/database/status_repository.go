package database

import (
	"database/sql"
	"fmt"
)

// StatusRepo handles database operations for availability snapshots
type StatusRepo struct {
	db *DB
}

var _ StatusRepository = (*StatusRepo)(nil)

// NewStatusRepository creates a new status repository
func NewStatusRepository(db *DB) *StatusRepo {
	return &StatusRepo{db: db}
}

// InsertStationStatus appends one snapshot row per status. Rows are never
// updated, so snapshot history grows monotonically run over run. The batch
// runs in a single transaction.
func (r *StatusRepo) InsertStationStatus(statuses []StatusInsert) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO station_status (
			station_sno, data_timestamp, available_rent_bikes,
			available_return_docks, is_active, src_update_time, api_update_time
		) VALUES ($1, NULLIF($2, '')::timestamptz, $3, $4, $5,
		          NULLIF($6, '')::timestamptz, NULLIF($7, '')::timestamptz)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare status insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range statuses {
		_, err := stmt.Exec(s.StationSno, s.DataTimestamp, s.AvailableRentBikes,
			s.AvailableReturnDocks, s.IsActive, s.SrcUpdateTime, s.APIUpdateTime)
		if err != nil {
			return fmt.Errorf("failed to insert status for station %s: %w", s.StationSno, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status insert: %w", err)
	}

	return nil
}

// GetSnapshotCount returns the total number of snapshot rows
func (r *StatusRepo) GetSnapshotCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM station_status").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot count: %w", err)
	}
	return count, nil
}

// GetLatestSnapshots returns the most recent snapshots for a station,
// newest first.
func (r *StatusRepo) GetLatestSnapshots(stationSno string, limit int) ([]StatusSnapshot, error) {
	rows, err := r.db.Query(`
		SELECT id, station_sno, data_timestamp, available_rent_bikes,
		       available_return_docks, is_active, src_update_time,
		       api_update_time, created_at
		FROM station_status
		WHERE station_sno = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, stationSno, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []StatusSnapshot
	for rows.Next() {
		var snap StatusSnapshot
		var dataTS, srcTS, apiTS sql.NullTime
		err := rows.Scan(
			&snap.ID, &snap.StationSno, &dataTS, &snap.AvailableRentBikes,
			&snap.AvailableReturnDocks, &snap.IsActive, &srcTS, &apiTS,
			&snap.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if dataTS.Valid {
			snap.DataTimestamp = &dataTS.Time
		}
		if srcTS.Valid {
			snap.SrcUpdateTime = &srcTS.Time
		}
		if apiTS.Valid {
			snap.APIUpdateTime = &apiTS.Time
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return snapshots, nil
}
