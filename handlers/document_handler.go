package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upb/proof-layer/models"
	"github.com/upb/proof-layer/utils"
)

// DocumentLookup finds the documents ingested under a trace id
type DocumentLookup interface {
	Documents(ctx context.Context, traceID string) ([]*models.Document, error)
}

// DocumentHandler serves ingestion lookups by trace id
type DocumentHandler struct {
	lookup DocumentLookup
	logger *zap.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(lookup DocumentLookup, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{lookup: lookup, logger: logger}
}

// HandleGetByTrace handles GET /traces/{trace_id}/documents
func (h *DocumentHandler) HandleGetByTrace(w http.ResponseWriter, r *http.Request) {
	traceID := chi.URLParam(r, "trace_id")
	if err := utils.ValidateUUID(traceID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	docs, err := h.lookup.Documents(r.Context(), traceID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, docs)
}
