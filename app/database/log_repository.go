package database

import (
	"database/sql"
	"fmt"
)

// LogRepo handles database operations for ingestion run logs
type LogRepo struct {
	db *DB
}

var _ LogRepository = (*LogRepo)(nil)

// NewLogRepository creates a new ingest log repository
func NewLogRepository(db *DB) *LogRepo {
	return &LogRepo{db: db}
}

// InsertIngestLog appends one run outcome row. Callers treat this as
// best-effort; a failure here must never mask the run's own result.
func (r *LogRepo) InsertIngestLog(entry IngestLogEntry) error {
	var batchTime sql.NullString
	if entry.BatchTime != nil && *entry.BatchTime != "" {
		batchTime = sql.NullString{String: *entry.BatchTime, Valid: true}
	}

	var fetched, inserted sql.NullInt64
	if entry.RecordsFetched != nil {
		fetched = sql.NullInt64{Int64: int64(*entry.RecordsFetched), Valid: true}
	}
	if entry.RecordsInserted != nil {
		inserted = sql.NullInt64{Int64: int64(*entry.RecordsInserted), Valid: true}
	}

	var errMsg sql.NullString
	if entry.ErrorMessage != "" {
		errMsg = sql.NullString{String: entry.ErrorMessage, Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO ingest_logs (
			run_started_at, run_ended_at, status, batch_time,
			records_fetched, records_inserted, duration_ms, error_message
		) VALUES ($1, $2, $3, $4::timestamptz, $5, $6, $7, $8)
	`, entry.RunStartedAt, entry.RunEndedAt, entry.Status, batchTime,
		fetched, inserted, entry.DurationMs, errMsg)

	if err != nil {
		return fmt.Errorf("failed to insert ingest log: %w", err)
	}

	return nil
}

// GetRecentLogs returns the most recent ingestion runs, newest first
func (r *LogRepo) GetRecentLogs(limit int) ([]IngestLog, error) {
	rows, err := r.db.Query(`
		SELECT id, run_started_at, run_ended_at, status,
		       batch_time::text, records_fetched, records_inserted,
		       duration_ms, error_message, created_at
		FROM ingest_logs
		ORDER BY run_started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent logs: %w", err)
	}
	defer rows.Close()

	var logs []IngestLog
	for rows.Next() {
		var log IngestLog
		var batchTime, errMsg sql.NullString
		var fetched, inserted sql.NullInt64
		err := rows.Scan(
			&log.ID, &log.RunStartedAt, &log.RunEndedAt, &log.Status,
			&batchTime, &fetched, &inserted, &log.DurationMs, &errMsg,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		if batchTime.Valid {
			log.BatchTime = &batchTime.String
		}
		if fetched.Valid {
			n := int(fetched.Int64)
			log.RecordsFetched = &n
		}
		if inserted.Valid {
			n := int(inserted.Int64)
			log.RecordsInserted = &n
		}
		if errMsg.Valid {
			log.ErrorMessage = &errMsg.String
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log rows: %w", err)
	}

	return logs, nil
}
