package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"contactdash/internal/entity"
	"contactdash/internal/fields"
)

type FieldHandler struct {
	svc *fields.Service
}

func NewFieldHandler(svc *fields.Service) *FieldHandler {
	return &FieldHandler{svc: svc}
}

// HandleFields serves the schema collection: list, create, delete.
func (h *FieldHandler) HandleFields(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *FieldHandler) list(w http.ResponseWriter, r *http.Request) {
	companyID := strings.TrimSpace(r.URL.Query().Get("company_id"))
	if companyID == "" {
		http.Error(w, "company_id is required", http.StatusBadRequest)
		return
	}
	if err := h.svc.Seed(r.Context(), companyID); err != nil {
		writeError(w, err)
		return
	}
	all, err := h.svc.All(r.Context(), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fields": all})
}

func (h *FieldHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID string `json:"companyId"`
		Label     string `json:"label"`
		Type      string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		http.Error(w, "companyId is required", http.StatusBadRequest)
		return
	}
	typ := entity.FieldType(strings.TrimSpace(req.Type))
	if typ == "" {
		typ = entity.FieldTypeText
	}
	field, err := h.svc.Create(r.Context(), companyID, req.Label, typ)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, field)
}

func (h *FieldHandler) delete(w http.ResponseWriter, r *http.Request) {
	companyID := strings.TrimSpace(r.URL.Query().Get("company_id"))
	fieldID := strings.TrimSpace(r.URL.Query().Get("field_id"))
	if companyID == "" || fieldID == "" {
		http.Error(w, "company_id and field_id are required", http.StatusBadRequest)
		return
	}
	if err := h.svc.Delete(r.Context(), companyID, fieldID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": fieldID})
}
