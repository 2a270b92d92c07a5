package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/writecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/writecoach-backend/internal/platform/apierr"
	"github.com/yungbote/writecoach-backend/internal/platform/ctxutil"
)

func childFrom(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.ChildID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("child identity not set on request")
	}
	return id, nil
}

// mapAggregateError translates aggregate failure codes into API errors.
func mapAggregateError(err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	msg := domainagg.MessageOf(err)
	code := domainagg.CodeOf(err)
	switch {
	case code == domainagg.CodeValidation:
		return apierr.Validation("validation", msg)
	case code == domainagg.CodeNotFound:
		return apierr.Ownership("session_not_found")
	case code == domainagg.CodeInvariantViolation:
		return apierr.Validation("phase_mismatch", msg)
	case code == domainagg.CodeLimitExceeded:
		return apierr.RevisionLimit(msg)
	case code.Concurrent():
		return apierr.Conflict("conflict", msg)
	default:
		return apierr.Internal("internal", err)
	}
}

func errLessonMissing(id string) error {
	return fmt.Errorf("lesson %q is not in the catalog", id)
}
