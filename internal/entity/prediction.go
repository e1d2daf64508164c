package entity

// PredictionSource tags which inference source a merged prediction came from.
// Diagnostic only; nothing downstream branches on it.
type PredictionSource string

const (
	SourceSystem PredictionSource = "system"
	SourceAI     PredictionSource = "ai"
)

// ColumnPrediction is the per-column mapping guess. Exactly one is produced
// per input header, in header order.
type ColumnPrediction struct {
	OriginalHeader  string           `json:"originalHeader"`
	SuggestedHeader string           `json:"suggestedHeader"`
	Confidence      float64          `json:"confidence"`
	IsCustom        bool             `json:"isCustom"`
	Source          PredictionSource `json:"source,omitempty"`
}
