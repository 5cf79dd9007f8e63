package model

import "time"

// Stage identifies a pipeline stage for the run ledger.
type Stage string

const (
	StageClean   Stage = "clean"
	StageParse   Stage = "parse"
	StageExport  Stage = "export"
	StageBuild   Stage = "build"
	StageTrain   Stage = "train"
	StagePredict Stage = "predict"
)

// RunStatus is the lifecycle state of a recorded stage run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// StageRun is one ledger entry: a single invocation of a pipeline stage.
type StageRun struct {
	ID          string    `json:"id"`
	Stage       Stage     `json:"stage"`
	Inputs      []string  `json:"inputs"`
	Status      RunStatus `json:"status"`
	RowsIn      int64     `json:"rows_in"`
	RowsOut     int64     `json:"rows_out"`
	RowsSkipped int64     `json:"rows_skipped"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Duration returns the elapsed run time, zero if still running.
func (r StageRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
