package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup pre-populates the report cache for a corporation.
	TaskReportWarmup = "reports:warmup"
	// TaskCompletionSweep re-runs the order completion check across a
	// project, catching orders whose inline check failed at return time.
	TaskCompletionSweep = "orders:completion_sweep"
)

// ReportWarmupPayload scopes a warmup run.
type ReportWarmupPayload struct {
	CorporationUUID string `json:"corporation_uuid"`
	ProjectUUID     string `json:"project_uuid,omitempty"`
}

// NewReportWarmupTask constructs an Asynq task.
func NewReportWarmupTask(payload ReportWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// CompletionSweepPayload scopes a completion sweep run.
type CompletionSweepPayload struct {
	CorporationUUID string `json:"corporation_uuid"`
	ProjectUUID     string `json:"project_uuid"`
}

// NewCompletionSweepTask constructs an Asynq task.
func NewCompletionSweepTask(payload CompletionSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCompletionSweep, data), nil
}
