package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/writecoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/writecoach-backend/internal/http/middleware"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string
	AuthMiddleware *httpMW.AuthMiddleware

	SessionHandler    *httpH.SessionHandler
	GradingHandler    *httpH.GradingHandler
	ProgressHandler   *httpH.ProgressHandler
	CurriculumHandler *httpH.CurriculumHandler
	LessonHandler     *httpH.LessonHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Catalog (public)
		if cfg.LessonHandler != nil {
			api.GET("/lessons", cfg.LessonHandler.ListLessons)
			api.GET("/lessons/:id", cfg.LessonHandler.GetLesson)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Sessions
		if cfg.SessionHandler != nil {
			protected.POST("/sessions", cfg.SessionHandler.StartSession)
			protected.GET("/sessions/:id", cfg.SessionHandler.GetSession)
			protected.POST("/chat", cfg.SessionHandler.Chat)
		}

		// Grading
		if cfg.GradingHandler != nil {
			protected.POST("/grade", cfg.GradingHandler.Grade)
			protected.POST("/revise", cfg.GradingHandler.Revise)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.GET("/progress/skills", cfg.ProgressHandler.ListSkills)
			protected.GET("/progress/streak", cfg.ProgressHandler.GetStreak)
			protected.GET("/achievements", cfg.ProgressHandler.ListAchievements)
			protected.POST("/achievements/seen", cfg.ProgressHandler.MarkAchievementsSeen)
		}

		// Curriculum
		if cfg.CurriculumHandler != nil {
			protected.GET("/curriculum", cfg.CurriculumHandler.GetActive)
			protected.POST("/curriculum", cfg.CurriculumHandler.Create)
			protected.GET("/curriculum/revisions", cfg.CurriculumHandler.ListRevisions)
		}
	}

	return r
}
