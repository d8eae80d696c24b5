package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/proof-layer/services/upload"
	"github.com/upb/proof-layer/utils"
)

// PresignService issues presigned upload URLs
type PresignService interface {
	Presign(ctx context.Context, filename string) (*upload.Presigned, error)
}

// PresignHandler handles upload URL requests
type PresignHandler struct {
	service PresignService
	logger  *zap.Logger
}

// NewPresignHandler creates a new PresignHandler
func NewPresignHandler(service PresignService, logger *zap.Logger) *PresignHandler {
	return &PresignHandler{service: service, logger: logger}
}

// HandlePresign handles POST /presign
func (h *PresignHandler) HandlePresign(w http.ResponseWriter, r *http.Request) {
	var req upload.Request
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	out, err := h.service.Presign(r.Context(), req.Filename)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, out)
}
