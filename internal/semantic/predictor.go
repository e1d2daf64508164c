package semantic

import (
	"context"
	"log"

	"contactdash/internal/entity"
)

const columnPrompt = `You are a smart CSV column analyzer.
Given a list of headers and sample values, map them to system fields:
firstName, lastName, email, phone, agentUid, createdOn

If the header doesn't match any, mark it as custom.

Return a JSON array of objects:
{ originalHeader, suggestedHeader, confidence (0-1), isCustom }
Only return valid JSON, no explanations.`

// maxSampleRows bounds how much row data is shipped to the model.
const maxSampleRows = 3

// Predictor wraps a generation client behind the never-fails boundary the
// import flow depends on.
type Predictor struct {
	client Client
}

func NewPredictor(client Client) *Predictor {
	return &Predictor{client: client}
}

type promptInput struct {
	Headers    []string   `json:"headers"`
	SampleRows [][]string `json:"sampleRows"`
}

// PredictColumns returns one prediction per header. Any client error or
// malformed response yields the all-custom fallback; this method never
// returns an error and never panics past this boundary.
func (p *Predictor) PredictColumns(ctx context.Context, headers []string, sampleRows [][]string) []entity.ColumnPrediction {
	if p == nil || p.client == nil || len(headers) == 0 {
		return FallbackPredictions(headers)
	}

	samples := sampleRows
	if len(samples) > maxSampleRows {
		samples = samples[:maxSampleRows]
	}

	text, err := p.client.GenerateText(ctx, columnPrompt, promptInput{
		Headers:    headers,
		SampleRows: samples,
	})
	if err != nil {
		log.Printf("semantic: %s call failed (%v), using fallback predictions", p.client.Name(), err)
		return FallbackPredictions(headers)
	}

	preds, err := ParsePredictions(text)
	if err != nil {
		log.Printf("semantic: unparseable response from %s (%v), using fallback predictions", p.client.Name(), err)
		return FallbackPredictions(headers)
	}
	return preds
}
