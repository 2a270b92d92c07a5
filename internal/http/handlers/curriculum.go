package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/writecoach-backend/internal/http/response"
	"github.com/yungbote/writecoach-backend/internal/platform/apierr"
	"github.com/yungbote/writecoach-backend/internal/services"
)

type CurriculumHandler struct {
	svc services.CurriculumService
}

func NewCurriculumHandler(svc services.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{svc: svc}
}

// GET /api/curriculum
func (h *CurriculumHandler) GetActive(c *gin.Context) {
	view, err := h.svc.Active(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/curriculum
func (h *CurriculumHandler) Create(c *gin.Context) {
	view, err := h.svc.Create(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/curriculum/revisions?limit=20
func (h *CurriculumHandler) ListRevisions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.RespondServiceError(c, apierr.Validation("validation", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	revisions, err := h.svc.Revisions(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"revisions": revisions})
}
