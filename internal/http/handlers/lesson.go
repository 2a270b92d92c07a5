package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/http/response"
)

type LessonHandler struct {
	catalog *catalog.Catalog
}

func NewLessonHandler(cat *catalog.Catalog) *LessonHandler {
	return &LessonHandler{catalog: cat}
}

// GET /api/lessons?category=narrative
func (h *LessonHandler) ListLessons(c *gin.Context) {
	category := c.Query("category")
	out := make([]*catalog.Lesson, 0)
	for _, l := range h.catalog.Lessons() {
		if category != "" && l.Category != category {
			continue
		}
		out = append(out, l)
	}
	response.RespondOK(c, gin.H{"lessons": out})
}

// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	lesson, ok := h.catalog.Lesson(c.Param("id"))
	if !ok {
		response.RespondError(c, http.StatusNotFound, "lesson_not_found", errors.New("lesson not found"))
		return
	}
	response.RespondOK(c, gin.H{"lesson": lesson})
}
