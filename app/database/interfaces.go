package database

import (
	"time"
)

// StationUpsert is the write shape for station metadata.
type StationUpsert struct {
	Sno           string
	NameZh        string
	NameEn        string
	AreaZh        string
	AreaEn        string
	AddressZh     string
	AddressEn     string
	TotalCapacity int
	Latitude      float64
	Longitude     float64
}

// StatusInsert is the write shape for an availability snapshot. Timestamps
// are kept as the feed's raw strings; the database casts them on insert.
// DataTimestamp, SrcUpdateTime and APIUpdateTime come from three distinct
// feed fields and must not be conflated.
type StatusInsert struct {
	StationSno           string
	DataTimestamp        string
	AvailableRentBikes   int
	AvailableReturnDocks int
	IsActive             bool
	SrcUpdateTime        string
	APIUpdateTime        string
}

// IngestLogEntry is the write shape for an ingestion run outcome. Counts and
// batch time are only populated on success; the error message only on failure.
type IngestLogEntry struct {
	RunStartedAt    time.Time
	RunEndedAt      time.Time
	Status          string
	BatchTime       *string
	RecordsFetched  *int
	RecordsInserted *int
	DurationMs      int64
	ErrorMessage    string
}

type StationRepository interface {
	UpsertStations(stations []StationUpsert) error
	FindStationsNearby(latitude, longitude, distanceMeters float64, limit, offset int) ([]Station, error)
	GetStationCount() (int, error)
}

type StatusRepository interface {
	InsertStationStatus(statuses []StatusInsert) error
	GetSnapshotCount() (int, error)
	GetLatestSnapshots(stationSno string, limit int) ([]StatusSnapshot, error)
}

type LogRepository interface {
	InsertIngestLog(entry IngestLogEntry) error
	GetRecentLogs(limit int) ([]IngestLog, error)
}
