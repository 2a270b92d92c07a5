package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestAccessorsOnEmptyContext(t *testing.T) {
	ctx := context.Background()
	if ChildID(ctx) != uuid.Nil || RequestID(ctx) != "" {
		t.Fatalf("empty context must yield zero values")
	}
	if GetRequestData(ctx) != nil || GetTraceData(ctx) != nil {
		t.Fatalf("empty context must yield nil data")
	}
}

func TestAccessorsRoundTrip(t *testing.T) {
	child := uuid.New()
	ctx := WithRequestData(context.Background(), &RequestData{ChildID: child})
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t-1", RequestID: "r-1"})
	if ChildID(ctx) != child {
		t.Fatalf("child want=%s got=%s", child, ChildID(ctx))
	}
	if RequestID(ctx) != "r-1" || GetTraceData(ctx).TraceID != "t-1" {
		t.Fatalf("unexpected trace data: %+v", GetTraceData(ctx))
	}
}
