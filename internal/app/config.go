package app

import (
	"strings"
	"time"

	"github.com/yungbote/writecoach-backend/internal/data/db"
	"github.com/yungbote/writecoach-backend/internal/platform/envutil"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	DB db.Config

	RedisAddr      string
	JWTSecretKey   string
	AllowedOrigins []string

	ModelProvider string
	ModelTimeout  time.Duration
	MaxRevisions  int

	Timezone    string
	WeeklyGoal  int
	CatalogPath string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "writecoach"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", ""),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
			SlowQuery:        envutil.Duration("DB_SLOW_QUERY", time.Second),
		},
		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		JWTSecretKey:  envutil.String("JWT_SECRET_KEY", ""),
		ModelProvider: strings.ToLower(envutil.String("MODEL_PROVIDER", "openai")),
		ModelTimeout:  envutil.Duration("MODEL_TIMEOUT", 45*time.Second),
		MaxRevisions:  envutil.Int("MAX_REVISIONS", 2),
		Timezone:      envutil.String("APP_TIMEZONE", "UTC"),
		WeeklyGoal:    envutil.Int("STREAK_WEEKLY_GOAL", 3),
		CatalogPath:   envutil.String("CATALOG_PATH", ""),
	}
	if raw := envutil.String("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		cfg.AllowedOrigins = strings.Split(raw, ",")
	}
	if log != nil {
		log.Info("Config loaded",
			"env", cfg.Environment,
			"db_driver", cfg.DB.Driver,
			"model_provider", cfg.ModelProvider,
			"redis", cfg.RedisAddr != "",
			"auth", cfg.JWTSecretKey != "",
			"timezone", cfg.Timezone,
		)
	}
	return cfg
}
