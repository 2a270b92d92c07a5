package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/writecoach-backend/internal/http/response"
	"github.com/yungbote/writecoach-backend/internal/services"
)

type ProgressHandler struct {
	svc services.ProgressService
}

func NewProgressHandler(svc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// GET /api/progress/skills
func (h *ProgressHandler) ListSkills(c *gin.Context) {
	skills, err := h.svc.Skills(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skills": skills})
}

// GET /api/progress/streak
func (h *ProgressHandler) GetStreak(c *gin.Context) {
	streak, err := h.svc.Streak(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"streak": streak})
}

// GET /api/achievements
func (h *ProgressHandler) ListAchievements(c *gin.Context) {
	achievements, err := h.svc.Achievements(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": achievements})
}

// POST /api/achievements/seen
func (h *ProgressHandler) MarkAchievementsSeen(c *gin.Context) {
	n, err := h.svc.MarkAchievementsSeen(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"marked": n})
}
