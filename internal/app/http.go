package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/http"
	httpH "github.com/yungbote/writecoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/writecoach-backend/internal/http/middleware"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Session    *httpH.SessionHandler
	Grading    *httpH.GradingHandler
	Progress   *httpH.ProgressHandler
	Curriculum *httpH.CurriculumHandler
	Lesson     *httpH.LessonHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cat *catalog.Catalog, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Session:    httpH.NewSessionHandler(log, services.Conversation),
		Grading:    httpH.NewGradingHandler(log, services.Grading),
		Progress:   httpH.NewProgressHandler(services.Progress),
		Curriculum: httpH.NewCurriculumHandler(services.Curriculum),
		Lesson:     httpH.NewLessonHandler(cat),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       serviceName,
		AllowedOrigins:    cfg.AllowedOrigins,
		AuthMiddleware:    middleware.Auth,
		SessionHandler:    handlers.Session,
		GradingHandler:    handlers.Grading,
		ProgressHandler:   handlers.Progress,
		CurriculumHandler: handlers.Curriculum,
		LessonHandler:     handlers.Lesson,
		HealthHandler:     handlers.Health,
	})
}
