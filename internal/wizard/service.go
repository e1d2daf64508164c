// Package wizard orchestrates one import end to end: archive, parse, predict,
// review, commit. It owns the per-job state the HTTP layer talks to and holds
// each step's validator directly instead of any shared registration slot.
package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"contactdash/internal/docstore"
	"contactdash/internal/entity"
	"contactdash/internal/fields"
	"contactdash/internal/importer"
	"contactdash/internal/ingest"
	"contactdash/internal/mapping"
	"contactdash/internal/predict"
	"contactdash/internal/semantic"
	"contactdash/internal/uploads"
)

var (
	ErrJobNotFound    = errors.New("wizard: import job not found")
	ErrMappingInvalid = errors.New("wizard: required core fields are not mapped")
	ErrAlreadyDone    = errors.New("wizard: import job already committed")
)

// Step names used by the wizard's navigation.
const (
	StepDetectedFields = "detected-fields"
	StepMapFields      = "map-fields"
)

// Job is one in-flight import.
type Job struct {
	ID        string
	CompanyID string
	Filename  string
	Parsed    *ingest.ParsedFile
	Session   *mapping.Session

	mu         sync.Mutex
	activeStep string
	done       bool
	summary    *entity.ImportSummary
}

// ActiveStep returns the step whose validator currently gates navigation.
func (j *Job) ActiveStep() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.activeStep
}

type Service struct {
	store     docstore.Store
	fields    *fields.Service
	predictor *semantic.Predictor
	archive   uploads.Archive
	hub       *hub

	mu   sync.RWMutex
	jobs map[string]*Job
}

func New(store docstore.Store, fieldSvc *fields.Service, predictor *semantic.Predictor, archive uploads.Archive) *Service {
	if archive == nil {
		archive = uploads.NullArchive{}
	}
	return &Service{
		store:     store,
		fields:    fieldSvc,
		predictor: predictor,
		archive:   archive,
		hub:       newHub(),
		jobs:      make(map[string]*Job),
	}
}

// StartImport archives the raw file, parses it, and seeds a review session
// from the merged system and semantic predictions. The two prediction
// sources have no data dependency, so they run concurrently.
func (s *Service) StartImport(ctx context.Context, companyID, filename string, content []byte) (*Job, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("wizard: company id is required")
	}
	jobID := fmt.Sprintf("import-%d", time.Now().UnixNano())

	if err := s.archive.Put(ctx, companyID, jobID, filename, content); err != nil {
		log.Printf("wizard: archive upload failed for %s (%v), continuing", jobID, err)
	}

	s.hub.publish(Event{JobID: jobID, Stage: StageParsing})
	parsed, err := ingest.Parse(filename, bytes.NewReader(content))
	if err != nil {
		s.hub.publish(Event{JobID: jobID, Stage: StageFailed, Message: err.Error()})
		return nil, err
	}

	s.hub.publish(Event{JobID: jobID, Stage: StagePredicting})

	if err := s.fields.Seed(ctx, companyID); err != nil {
		log.Printf("wizard: core field seed failed for %s: %v", companyID, err)
	}

	// Schema lookup failure must not abort prediction; the heuristic
	// scorer alone still produces usable output.
	schema, err := s.fields.All(ctx, companyID)
	if err != nil {
		log.Printf("wizard: schema lookup failed for %s (%v), scoring without exact matches", jobID, err)
		schema = nil
	}

	aiCh := make(chan []entity.ColumnPrediction, 1)
	go func() {
		aiCh <- s.predictor.PredictColumns(ctx, parsed.Headers, parsed.SampleRows(3))
	}()
	sys := predict.ColumnsWithSchema(parsed.Headers, parsed.Rows, schema)
	merged := predict.Merge(sys, <-aiCh)

	job := &Job{
		ID:         jobID,
		CompanyID:  companyID,
		Filename:   filename,
		Parsed:     parsed,
		Session:    mapping.NewSession(companyID, s.fields, merged),
		activeStep: StepDetectedFields,
	}
	s.mu.Lock()
	s.jobs[jobID] = job
	s.mu.Unlock()

	s.hub.publish(Event{JobID: jobID, Stage: StageReviewing})
	return job, nil
}

// Job returns the in-flight import with the given id.
func (s *Service) Job(jobID string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return job, nil
}

// validatorFor returns the typed validator gating the given step.
func (s *Service) validatorFor(job *Job, step string) mapping.StepValidator {
	switch step {
	case StepMapFields:
		return mapping.MapFieldsStep{Session: job.Session}
	default:
		return mapping.DetectedFieldsStep{}
	}
}

// ValidateStep runs the named step's validator without mutating state.
func (s *Service) ValidateStep(ctx context.Context, jobID, step string) (mapping.Result, error) {
	job, err := s.Job(jobID)
	if err != nil {
		return mapping.Result{}, err
	}
	return s.validatorFor(job, step).Validate(ctx)
}

// Advance moves the job to the next step when the active step validates.
func (s *Service) Advance(ctx context.Context, jobID string) (mapping.Result, error) {
	job, err := s.Job(jobID)
	if err != nil {
		return mapping.Result{}, err
	}
	res, err := s.validatorFor(job, job.ActiveStep()).Validate(ctx)
	if err != nil || !res.IsValid {
		return res, err
	}
	job.mu.Lock()
	if job.activeStep == StepDetectedFields {
		job.activeStep = StepMapFields
	}
	job.mu.Unlock()
	return res, nil
}

// Commit validates the mapping, projects the parsed rows through it, and
// hands them to the reconciler. Progress is streamed to job subscribers.
func (s *Service) Commit(ctx context.Context, jobID, actor string) (entity.ImportSummary, error) {
	job, err := s.Job(jobID)
	if err != nil {
		return entity.ImportSummary{}, err
	}

	job.mu.Lock()
	if job.done {
		job.mu.Unlock()
		return *job.summary, ErrAlreadyDone
	}
	job.mu.Unlock()

	res, err := job.Session.ValidateMappedFields(ctx)
	if err != nil {
		return entity.ImportSummary{}, err
	}
	if !res.IsValid {
		labels := make([]string, 0, len(res.UnmappedFields))
		for _, f := range res.UnmappedFields {
			labels = append(labels, f.Label)
		}
		return entity.ImportSummary{}, fmt.Errorf("%w: %s", ErrMappingInvalid, strings.Join(labels, ", "))
	}

	rows := mapping.Apply(job.Session.Entries(), job.Parsed.Rows)
	s.hub.publish(Event{JobID: jobID, Stage: StageImporting, Total: len(rows)})

	rec := importer.New(s.store, s.fields)
	rec.OnProgress = func(processed, total int) {
		s.hub.publish(Event{JobID: jobID, Stage: StageImporting, Processed: processed, Total: total})
	}
	summary, err := rec.ImportContacts(ctx, job.CompanyID, rows, actor)
	if err != nil {
		s.hub.publish(Event{JobID: jobID, Stage: StageFailed, Message: err.Error()})
		return summary, err
	}

	job.mu.Lock()
	job.done = true
	job.summary = &summary
	job.mu.Unlock()

	s.hub.publish(Event{JobID: jobID, Stage: StageDone, Summary: &summary})
	return summary, nil
}

// Subscribe returns a channel of progress events for jobID. The caller must
// Unsubscribe when finished.
func (s *Service) Subscribe(jobID string) chan Event {
	return s.hub.subscribe(jobID)
}

func (s *Service) Unsubscribe(jobID string, ch chan Event) {
	s.hub.unsubscribe(jobID, ch)
}
