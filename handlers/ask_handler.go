package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/proof-layer/internal/rag"
	"github.com/upb/proof-layer/middleware"
	"github.com/upb/proof-layer/services/ask"
	"github.com/upb/proof-layer/utils"
)

// AskService answers questions
type AskService interface {
	Ask(ctx context.Context, req ask.Request) (*rag.Outcome, error)
}

// AskHandler handles question answering requests
type AskHandler struct {
	service AskService
	logger  *zap.Logger
}

// NewAskHandler creates a new AskHandler
func NewAskHandler(service AskService, logger *zap.Logger) *AskHandler {
	return &AskHandler{service: service, logger: logger}
}

// HandleAsk handles POST /ask. The outcome is written as the response body,
// refusals included.
func (h *AskHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req ask.Request
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	out, err := h.service.Ask(ctx, req)
	if err != nil {
		h.logger.Error("failed to answer question",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, out); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
