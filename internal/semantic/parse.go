package semantic

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"contactdash/internal/entity"
)

var reFenced = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ParsePredictions extracts the JSON array of column predictions from a model
// response. The array may be fenced in a markdown code block or embedded in
// surrounding prose.
func ParsePredictions(text string) ([]entity.ColumnPrediction, error) {
	payload := strings.TrimSpace(text)
	if m := reFenced.FindStringSubmatch(payload); m != nil {
		payload = strings.TrimSpace(m[1])
	} else if !strings.HasPrefix(payload, "[") {
		start := strings.Index(payload, "[")
		end := strings.LastIndex(payload, "]")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: no JSON array found", ErrInvalidResponse)
		}
		payload = payload[start : end+1]
	}

	var preds []entity.ColumnPrediction
	if err := json.Unmarshal([]byte(payload), &preds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return preds, nil
}

// FallbackPredictions is the substitute used whenever the model call or parse
// fails: one zero-confidence custom prediction per header.
func FallbackPredictions(headers []string) []entity.ColumnPrediction {
	out := make([]entity.ColumnPrediction, 0, len(headers))
	for _, h := range headers {
		out = append(out, entity.ColumnPrediction{
			OriginalHeader:  h,
			SuggestedHeader: "custom_" + h,
			Confidence:      0,
			IsCustom:        true,
		})
	}
	return out
}
