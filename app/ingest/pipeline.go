package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chweng/bike-radar/app/database"
	"github.com/chweng/bike-radar/app/youbike"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// ErrEmptyFeed is the empty-batch failure: the feed answering with zero
// records is treated as bad data, not as a valid (empty) update.
var ErrEmptyFeed = errors.New("youbike API returned an empty array")

// FeedClient fetches raw station records from the upstream feed.
type FeedClient interface {
	FetchData(ctx context.Context) ([]youbike.Station, error)
}

// Result is the outcome of a successful ingestion run.
type Result struct {
	Status   string `json:"status"`
	Inserted int    `json:"inserted"`
}

// Pipeline runs one ingestion cycle: fetch, validate, transform, persist,
// log. Every invocation writes exactly one ingest log row, success or
// failure, and a failed run's original error is returned to the caller
// unwrapped. Only log-write failures are swallowed.
type Pipeline struct {
	client      FeedClient
	stationRepo database.StationRepository
	statusRepo  database.StatusRepository
	logRepo     database.LogRepository
}

func NewPipeline(client FeedClient, stationRepo database.StationRepository,
	statusRepo database.StatusRepository, logRepo database.LogRepository) *Pipeline {
	return &Pipeline{
		client:      client,
		stationRepo: stationRepo,
		statusRepo:  statusRepo,
		logRepo:     logRepo,
	}
}

// Run executes a single ingestion run. There is no retry here; retry
// policy belongs to the scheduler that triggers the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	startTime := time.Now().UTC()

	data, err := p.client.FetchData(ctx)
	if err != nil {
		p.logFailure(startTime, err)
		return Result{}, err
	}

	recordsFetched := len(data)
	if recordsFetched == 0 {
		p.logFailure(startTime, ErrEmptyFeed)
		return Result{}, ErrEmptyFeed
	}

	stations := buildStationUpserts(data)
	statuses := buildStatusInserts(data)

	var batchTime *string
	if len(statuses) > 0 {
		bt := statuses[0].SrcUpdateTime
		batchTime = &bt
	}

	// Station upsert and status insert are independent writes; fan out and
	// let both settle before deciding the outcome, so no write is left in
	// flight when the run log goes out.
	var wg sync.WaitGroup
	var stationErr, statusErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		stationErr = p.stationRepo.UpsertStations(stations)
	}()
	go func() {
		defer wg.Done()
		statusErr = p.statusRepo.InsertStationStatus(statuses)
	}()
	wg.Wait()

	if stationErr != nil {
		p.logFailure(startTime, stationErr)
		return Result{}, stationErr
	}
	if statusErr != nil {
		p.logFailure(startTime, statusErr)
		return Result{}, statusErr
	}

	endTime := time.Now().UTC()
	recordsInserted := len(statuses)

	p.writeLog(database.IngestLogEntry{
		RunStartedAt:    startTime,
		RunEndedAt:      endTime,
		Status:          StatusSuccess,
		BatchTime:       batchTime,
		RecordsFetched:  &recordsFetched,
		RecordsInserted: &recordsInserted,
		DurationMs:      endTime.Sub(startTime).Milliseconds(),
	})

	return Result{Status: StatusSuccess, Inserted: recordsInserted}, nil
}

// logFailure writes a failure log row carrying the triggering error's
// message. Counts and batch time stay empty on failure.
func (p *Pipeline) logFailure(startTime time.Time, cause error) {
	endTime := time.Now().UTC()
	p.writeLog(database.IngestLogEntry{
		RunStartedAt: startTime,
		RunEndedAt:   endTime,
		Status:       StatusFailure,
		DurationMs:   endTime.Sub(startTime).Milliseconds(),
		ErrorMessage: cause.Error(),
	})
}

// writeLog is best-effort: a log-write failure is reported and discarded so
// it can never mask the run's primary outcome.
func (p *Pipeline) writeLog(entry database.IngestLogEntry) {
	if err := p.logRepo.InsertIngestLog(entry); err != nil {
		slog.Error("Failed to write ingest log", "status", entry.Status, "error", err)
	}
}
