package database

import (
	"time"
)

// Station is a bike-share dock location, keyed by the feed's stable
// station number (sno). Upserted on every ingestion run, latest write wins.
type Station struct {
	Sno           string    `json:"sno"`
	NameZh        string    `json:"name_zh"`
	NameEn        string    `json:"name_en"`
	AreaZh        string    `json:"area_zh"`
	AreaEn        string    `json:"area_en"`
	AddressZh     string    `json:"address_zh"`
	AddressEn     string    `json:"address_en"`
	TotalCapacity int       `json:"total_capacity"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// StatusSnapshot is one immutable observation of a station's availability.
// Rows are append-only; history accumulates one row per station per run.
type StatusSnapshot struct {
	ID                   int64      `json:"id"`
	StationSno           string     `json:"station_sno"`
	DataTimestamp        *time.Time `json:"data_timestamp"`
	AvailableRentBikes   int        `json:"available_rent_bikes"`
	AvailableReturnDocks int        `json:"available_return_docks"`
	IsActive             bool       `json:"is_active"`
	SrcUpdateTime        *time.Time `json:"src_update_time"`
	APIUpdateTime        *time.Time `json:"api_update_time"`
	CreatedAt            time.Time  `json:"created_at"`
}

// IngestLog records the outcome of a single ingestion run.
type IngestLog struct {
	ID              int64     `json:"id"`
	RunStartedAt    time.Time `json:"run_started_at"`
	RunEndedAt      time.Time `json:"run_ended_at"`
	Status          string    `json:"status"`
	BatchTime       *string   `json:"batch_time"`
	RecordsFetched  *int      `json:"records_fetched"`
	RecordsInserted *int      `json:"records_inserted"`
	DurationMs      int64     `json:"duration_ms"`
	ErrorMessage    *string   `json:"error_message"`
	CreatedAt       time.Time `json:"-"`
}
