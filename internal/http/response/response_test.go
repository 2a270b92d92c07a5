package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/writecoach-backend/internal/coaching/quality"
	"github.com/yungbote/writecoach-backend/internal/platform/apierr"
)

func render(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondServiceError(c, err)
	return rec
}

func TestRespondServiceErrorQualityPayload(t *testing.T) {
	err := apierr.Unprocessable(quality.CodeTooShort, &quality.Rejection{
		Code:      quality.CodeTooShort,
		Message:   "Try writing a bit more",
		WordCount: 4,
	})
	rec := render(err)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status want=422 got=%d", rec.Code)
	}
	var body QualityError
	if e := json.Unmarshal(rec.Body.Bytes(), &body); e != nil {
		t.Fatalf("decode: %v", e)
	}
	if body.Error != "too_short" || body.WordCount != 4 || body.Message == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRespondServiceErrorEnvelope(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"validation", apierr.Validation("validation", "text is required"), http.StatusBadRequest, "validation", "text is required"},
		{"wrapped ownership", fmt.Errorf("grade: %w", apierr.Ownership("session_not_found")), http.StatusNotFound, "session_not_found", "not found"},
		{"wrapped twice", fmt.Errorf("handler: %w", fmt.Errorf("load session 42: %w", apierr.Conflict("conflict", "session changed"))), http.StatusConflict, "conflict", "session changed"},
		{"internal hides message", errors.New("pq: password authentication failed"), http.StatusInternalServerError, "internal", "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := render(tc.err)
			if rec.Code != tc.status {
				t.Fatalf("status want=%d got=%d", tc.status, rec.Code)
			}
			var env ErrorEnvelope
			if e := json.Unmarshal(rec.Body.Bytes(), &env); e != nil {
				t.Fatalf("decode: %v", e)
			}
			if env.Error.Code != tc.code || env.Error.Message != tc.msg {
				t.Fatalf("unexpected envelope: %+v", env)
			}
		})
	}
}

func TestRespondServiceErrorMarksUpstreamRetryable(t *testing.T) {
	rec := render(apierr.Upstream("model_error", errors.New("deadline exceeded")))
	var env ErrorEnvelope
	if e := json.Unmarshal(rec.Body.Bytes(), &env); e != nil {
		t.Fatalf("decode: %v", e)
	}
	if rec.Code != http.StatusInternalServerError || !env.Error.Retryable || env.Error.Code != "model_error" {
		t.Fatalf("unexpected: status=%d env=%+v", rec.Code, env)
	}
}
