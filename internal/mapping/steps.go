package mapping

import "context"

// StepValidator gates forward navigation in the import wizard. The
// orchestrator holds the active step's validator directly; steps never
// register themselves through shared mutable state.
type StepValidator interface {
	Validate(ctx context.Context) (Result, error)
}

// DetectedFieldsStep is the informational first step; it is always valid.
type DetectedFieldsStep struct{}

func (DetectedFieldsStep) Validate(context.Context) (Result, error) {
	return Result{IsValid: true}, nil
}

// MapFieldsStep validates the review session's core-field coverage.
type MapFieldsStep struct {
	Session *Session
}

func (s MapFieldsStep) Validate(ctx context.Context) (Result, error) {
	if s.Session == nil {
		return Result{IsValid: false}, nil
	}
	return s.Session.ValidateMappedFields(ctx)
}
