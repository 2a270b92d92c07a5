package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/writecoach-backend/internal/http/response"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
	"github.com/yungbote/writecoach-backend/internal/services"
)

type GradingHandler struct {
	log *logger.Logger
	svc services.GradingService
}

func NewGradingHandler(log *logger.Logger, svc services.GradingService) *GradingHandler {
	return &GradingHandler{log: log.With("handler", "GradingHandler"), svc: svc}
}

type submissionRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// POST /api/grade
func (h *GradingHandler) Grade(c *gin.Context) {
	var req submissionRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	sessionID, err := parseSessionID(req.SessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	res, err := h.svc.Grade(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/revise
func (h *GradingHandler) Revise(c *gin.Context) {
	var req submissionRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	sessionID, err := parseSessionID(req.SessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	res, err := h.svc.Revise(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
