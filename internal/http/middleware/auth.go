package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/writecoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

const headerChildID = "X-Child-Id"

// ChildClaims are issued by the parent-facing account service.
type ChildClaims struct {
	ChildID string `json:"child_id"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the child a request acts for. With a secret it
// requires a signed bearer token; without one it trusts X-Child-Id, which
// is only meant for local development.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, jwtSecretKey string) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	if jwtSecretKey == "" {
		middlewareLogger.Warn("JWT_SECRET_KEY unset; trusting X-Child-Id header")
	}
	return &AuthMiddleware{log: middlewareLogger, secret: []byte(jwtSecretKey)}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		childID, err := am.resolveChild(c)
		if err != nil {
			am.log.Debug("Auth rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{ChildID: childID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) resolveChild(c *gin.Context) (uuid.UUID, error) {
	if len(am.secret) == 0 {
		raw := strings.TrimSpace(c.GetHeader(headerChildID))
		if raw == "" {
			return uuid.Nil, errors.New("missing child id")
		}
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			return uuid.Nil, errors.New("invalid child id")
		}
		return id, nil
	}

	tokenString := extractBearer(c)
	if tokenString == "" {
		return uuid.Nil, errors.New("missing or invalid token")
	}
	return am.parseToken(tokenString)
}

func (am *AuthMiddleware) parseToken(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &ChildClaims{}, func(token *jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*ChildClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, errors.New("invalid or expired token")
	}
	raw := claims.ChildID
	if raw == "" {
		raw = claims.Subject
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.New("token carries no child id")
	}
	return id, nil
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
