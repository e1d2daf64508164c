package wizard

import "contactdash/internal/entity"

// Stage names an import job's lifecycle phase, in order.
type Stage string

const (
	StageParsing    Stage = "parsing"
	StagePredicting Stage = "predicting"
	StageReviewing  Stage = "reviewing"
	StageImporting  Stage = "importing"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// Event is one progress update pushed to subscribers of an import job.
type Event struct {
	JobID     string                `json:"jobId"`
	Stage     Stage                 `json:"stage"`
	Processed int                   `json:"processed,omitempty"`
	Total     int                   `json:"total,omitempty"`
	Summary   *entity.ImportSummary `json:"summary,omitempty"`
	Message   string                `json:"message,omitempty"`
}
