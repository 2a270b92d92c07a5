package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/writecoach-backend/internal/http/response"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
	"github.com/yungbote/writecoach-backend/internal/services"
)

type SessionHandler struct {
	log *logger.Logger
	svc services.ConversationService
}

func NewSessionHandler(log *logger.Logger, svc services.ConversationService) *SessionHandler {
	return &SessionHandler{log: log.With("handler", "SessionHandler"), svc: svc}
}

// POST /api/sessions
// body: { "lessonId": "narrative-1" }
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req struct {
		LessonID string `json:"lessonId"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	view, err := h.svc.StartSession(c.Request.Context(), req.LessonID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, err := parseSessionID(c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	view, err := h.svc.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/chat
// body: { "sessionId": "...", "message": "..." }
func (h *SessionHandler) Chat(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	sessionID, err := parseSessionID(req.SessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	reply, err := h.svc.Chat(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, reply)
}
