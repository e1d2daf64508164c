package semantic

import (
	"context"
	"errors"
	"testing"
)

func TestParsePredictionsFencedBlock(t *testing.T) {
	text := "Here is the mapping you asked for:\n```json\n[\n  {\"originalHeader\": \"Email\", \"suggestedHeader\": \"email\", \"confidence\": 0.9, \"isCustom\": false}\n]\n```\nLet me know if you need anything else."

	preds, err := ParsePredictions(text)
	if err != nil {
		t.Fatalf("ParsePredictions() error = %v", err)
	}
	if len(preds) != 1 {
		t.Fatalf("len(preds) = %d, want 1", len(preds))
	}
	if preds[0].SuggestedHeader != "email" || preds[0].Confidence != 0.9 {
		t.Fatalf("preds[0] = %+v", preds[0])
	}
}

func TestParsePredictionsBareArrayWithProse(t *testing.T) {
	text := `Sure! [{"originalHeader": "Phone No", "suggestedHeader": "phone", "confidence": 0.85, "isCustom": false}] Hope that helps.`

	preds, err := ParsePredictions(text)
	if err != nil {
		t.Fatalf("ParsePredictions() error = %v", err)
	}
	if len(preds) != 1 || preds[0].SuggestedHeader != "phone" {
		t.Fatalf("preds = %+v", preds)
	}
}

func TestParsePredictionsTruncatedJSON(t *testing.T) {
	if _, err := ParsePredictions(`[{"originalHeader": "Email", "sugge`); err == nil {
		t.Fatalf("ParsePredictions() error = nil, want parse failure")
	}
	if _, err := ParsePredictions("no json here at all"); err == nil {
		t.Fatalf("ParsePredictions() error = nil, want parse failure")
	}
}

func TestPredictColumnsFallsBackOnClientError(t *testing.T) {
	p := NewPredictor(&FakeClient{Err: errors.New("network down")})
	headers := []string{"Full Name", "Email"}

	preds := p.PredictColumns(context.Background(), headers, nil)
	if len(preds) != len(headers) {
		t.Fatalf("len(preds) = %d, want %d", len(preds), len(headers))
	}
	for i, pr := range preds {
		if !pr.IsCustom || pr.Confidence != 0 {
			t.Fatalf("preds[%d] = %+v, want zero-confidence custom", i, pr)
		}
		if pr.SuggestedHeader != "custom_"+headers[i] {
			t.Fatalf("preds[%d].suggestedHeader = %q", i, pr.SuggestedHeader)
		}
	}
}

func TestPredictColumnsFallsBackOnMalformedResponse(t *testing.T) {
	p := NewPredictor(&FakeClient{Response: "I could not produce JSON, sorry."})
	preds := p.PredictColumns(context.Background(), []string{"Email"}, nil)
	if len(preds) != 1 || !preds[0].IsCustom {
		t.Fatalf("preds = %+v, want fallback", preds)
	}
}

func TestPredictColumnsParsesFakeDefault(t *testing.T) {
	p := NewPredictor(&FakeClient{})
	preds := p.PredictColumns(context.Background(), []string{"A", "B"}, [][]string{{"1", "2"}})
	if len(preds) != 2 {
		t.Fatalf("len(preds) = %d, want 2", len(preds))
	}
}
