package semantic

import (
	"context"
	"encoding/json"
)

// FakeClient returns a canned response for offline runs and tests.
type FakeClient struct {
	Response string
	Err      error
}

func (f *FakeClient) Name() string { return "FakeModel" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateText(_ context.Context, _ string, input any) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if f.Response != "" {
		return f.Response, nil
	}
	// Default: echo every header back as a custom column, which is a valid
	// prediction payload for any input.
	in, ok := input.(promptInput)
	if !ok {
		return "[]", nil
	}
	preds := FallbackPredictions(in.Headers)
	raw, err := json.Marshal(preds)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
