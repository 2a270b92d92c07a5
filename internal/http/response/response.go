package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/writecoach-backend/internal/coaching/quality"
	"github.com/yungbote/writecoach-backend/internal/platform/apierr"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// QualityError is the 422 body for submissions rejected by the quality gate.
type QualityError struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	WordCount int    `json:"wordCount"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError renders an error returned by a service. Internal
// errors never leak their message.
func RespondServiceError(c *gin.Context, err error) {
	var rej *quality.Rejection
	if errors.As(err, &rej) {
		c.JSON(http.StatusUnprocessableEntity, QualityError{
			Error:     rej.Code,
			Message:   rej.Message,
			WordCount: rej.WordCount,
		})
		return
	}

	status := apierr.StatusOf(err)
	code := apierr.CodeOf(err)
	if code == "" {
		code = "internal"
	}
	var ae *apierr.Error
	isAPI := errors.As(err, &ae)
	msg := "internal error"
	if status < http.StatusInternalServerError && err != nil {
		// Wrapping context stays server-side.
		msg = err.Error()
		if isAPI {
			msg = ae.Error()
		}
	}
	retryable := isAPI && ae.Retryable
	if retryable {
		msg = "the writing coach is unavailable, please try again"
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      code,
			Retryable: retryable,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
