package server

import (
	"net/http"

	"contactdash/internal/handler"
	"contactdash/internal/middleware"
)

func NewMux(importHandler *handler.ImportHandler, fieldHandler *handler.FieldHandler) http.Handler {
	mux := http.NewServeMux()

	// Import wizard
	mux.HandleFunc("/v1/imports", importHandler.HandleStart)
	mux.HandleFunc("/v1/imports/mapping", importHandler.HandleMapping)
	mux.HandleFunc("/v1/imports/select-field", importHandler.HandleSelectField)
	mux.HandleFunc("/v1/imports/skip", importHandler.HandleSkip)
	mux.HandleFunc("/v1/imports/reset", importHandler.HandleReset)
	mux.HandleFunc("/v1/imports/custom-field", importHandler.HandleCustomField)
	mux.HandleFunc("/v1/imports/validate", importHandler.HandleValidate)
	mux.HandleFunc("/v1/imports/advance", importHandler.HandleAdvance)
	mux.HandleFunc("/v1/imports/commit", importHandler.HandleCommit)
	mux.HandleFunc("/v1/imports/progress", importHandler.HandleProgressWS)

	// Field schema
	mux.HandleFunc("/v1/fields", fieldHandler.HandleFields)

	return middleware.CORS(mux)
}
