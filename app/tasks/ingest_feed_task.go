package tasks

import (
	"context"
	"log/slog"
)

// IngestFeedTask wraps one pipeline invocation for the worker pool. The
// pipeline writes its own run log either way; the task only adds worker
// level reporting and retry accounting.
type IngestFeedTask struct {
	Task
	pipeline IngestRunner
}

func NewIngestFeedTask(pipeline IngestRunner) *IngestFeedTask {
	return &IngestFeedTask{
		Task:     NewTask(TaskTypeIngestFeed),
		pipeline: pipeline,
	}
}

func (t *IngestFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.pipeline.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "IngestFeed",
		"duration", t.GetDuration(),
		"inserted", result.Inserted)

	return nil
}
