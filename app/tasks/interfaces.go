package tasks

import (
	"context"

	"github.com/chweng/bike-radar/app/ingest"
)

// IngestRunner runs one ingestion cycle. Implemented by ingest.Pipeline.
type IngestRunner interface {
	Run(ctx context.Context) (ingest.Result, error)
}

// TaskSchedulerInterface defines the interface for task scheduling
// operations. The scheduler owns periodic triggering and retry policy;
// the pipeline itself never retries.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
