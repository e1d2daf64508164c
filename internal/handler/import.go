// Package handler exposes the import wizard and field schema over plain JSON
// endpoints. Request bodies stay small structs decoded inline; every handler
// checks its method first and answers JSON on success.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"contactdash/internal/fields"
	"contactdash/internal/mapping"
	"contactdash/internal/wizard"
)

// maxUploadBytes caps one import file. Spreadsheet exports in this product
// are a few megabytes at most.
const maxUploadBytes = 32 << 20

type ImportHandler struct {
	svc *wizard.Service
}

func NewImportHandler(svc *wizard.Service) *ImportHandler {
	return &ImportHandler{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wizard.ErrJobNotFound),
		errors.Is(err, fields.ErrNotFound),
		errors.Is(err, mapping.ErrUnknownField):
		status = http.StatusNotFound
	case errors.Is(err, mapping.ErrFieldTaken),
		errors.Is(err, fields.ErrDuplicateLabel),
		errors.Is(err, wizard.ErrAlreadyDone):
		status = http.StatusConflict
	case errors.Is(err, wizard.ErrMappingInvalid),
		errors.Is(err, mapping.ErrIndexOutOfRange),
		errors.Is(err, mapping.ErrCoreFieldSkip),
		errors.Is(err, fields.ErrEmptyLabel),
		errors.Is(err, fields.ErrCoreImmutable):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// HandleStart accepts a multipart upload and opens a new import job.
func (h *ImportHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	companyID := strings.TrimSpace(r.FormValue("company_id"))
	if companyID == "" {
		http.Error(w, "company_id is required", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}

	job, err := h.svc.StartImport(r.Context(), companyID, header.Filename, content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobId":      job.ID,
		"headers":    job.Parsed.Headers,
		"rowCount":   len(job.Parsed.Rows),
		"sampleRows": job.Parsed.SampleRows(5),
		"entries":    job.Session.Entries(),
		"activeStep": job.ActiveStep(),
	})
}

// HandleMapping returns the current column mapping for a job.
func (h *ImportHandler) HandleMapping(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	jobID := strings.TrimSpace(r.URL.Query().Get("job_id"))
	if jobID == "" {
		http.Error(w, "job_id is required", http.StatusBadRequest)
		return
	}
	job, err := h.svc.Job(jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobId":      job.ID,
		"entries":    job.Session.Entries(),
		"activeStep": job.ActiveStep(),
	})
}

type mappingActionRequest struct {
	JobID   string `json:"jobId"`
	Index   int    `json:"index"`
	FieldID string `json:"fieldId,omitempty"`
	Label   string `json:"label,omitempty"`
}

// HandleSelectField maps one column to an existing schema field.
func (h *ImportHandler) HandleSelectField(w http.ResponseWriter, r *http.Request) {
	h.mutateMapping(w, r, func(job *wizard.Job, req mappingActionRequest) error {
		return job.Session.SelectField(r.Context(), req.Index, req.FieldID)
	})
}

// HandleSkip excludes one column from the import.
func (h *ImportHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	h.mutateMapping(w, r, func(job *wizard.Job, req mappingActionRequest) error {
		return job.Session.Skip(r.Context(), req.Index)
	})
}

// HandleReset restores one column to its predicted mapping.
func (h *ImportHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.mutateMapping(w, r, func(job *wizard.Job, req mappingActionRequest) error {
		return job.Session.Reset(req.Index)
	})
}

// HandleCustomField creates a new custom field and maps the column to it.
func (h *ImportHandler) HandleCustomField(w http.ResponseWriter, r *http.Request) {
	h.mutateMapping(w, r, func(job *wizard.Job, req mappingActionRequest) error {
		_, err := job.Session.CreateCustomField(r.Context(), req.Index, req.Label)
		return err
	})
}

func (h *ImportHandler) mutateMapping(w http.ResponseWriter, r *http.Request, fn func(*wizard.Job, mappingActionRequest) error) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req mappingActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	job, err := h.svc.Job(strings.TrimSpace(req.JobID))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := fn(job, req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobId":   job.ID,
		"entries": job.Session.Entries(),
	})
}

// HandleValidate runs a step validator without moving the wizard.
func (h *ImportHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	jobID := strings.TrimSpace(r.URL.Query().Get("job_id"))
	if jobID == "" {
		http.Error(w, "job_id is required", http.StatusBadRequest)
		return
	}
	step := strings.TrimSpace(r.URL.Query().Get("step"))
	if step == "" {
		step = wizard.StepMapFields
	}
	res, err := h.svc.ValidateStep(r.Context(), jobID, step)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleAdvance validates the active step and moves to the next one.
func (h *ImportHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	res, err := h.svc.Advance(r.Context(), strings.TrimSpace(req.JobID))
	if err != nil {
		writeError(w, err)
		return
	}
	job, err := h.svc.Job(strings.TrimSpace(req.JobID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"validation": res,
		"activeStep": job.ActiveStep(),
	})
}

// HandleCommit validates the mapping and runs the bulk import.
func (h *ImportHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		JobID string `json:"jobId"`
		Actor string `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	summary, err := h.svc.Commit(r.Context(), strings.TrimSpace(req.JobID), strings.TrimSpace(req.Actor))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
