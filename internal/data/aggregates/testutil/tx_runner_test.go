package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/writecoach-backend/internal/platform/dbctx"
)

func TestInjectedTxRunnerCounters(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name                     string
		runner                   *InjectedTxRunner
		body                     error
		wantErr                  error
		wantCommit, wantRollback int
		wantBodyCalled           bool
	}{
		{name: "commit", runner: &InjectedTxRunner{}, wantCommit: 1, wantBodyCalled: true},
		{name: "body error", runner: &InjectedTxRunner{}, body: boom, wantErr: boom, wantRollback: 1, wantBodyCalled: true},
		{name: "fail commit", runner: &InjectedTxRunner{FailCommit: boom}, wantErr: boom, wantRollback: 1, wantBodyCalled: true},
		{name: "fail before body", runner: &InjectedTxRunner{FailBeforeBody: boom}, wantErr: boom, wantRollback: 1},
		{name: "fail begin", runner: &InjectedTxRunner{FailBegin: boom}, wantErr: boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			err := tc.runner.InTx(context.Background(), func(_ dbctx.Context) error {
				called = true
				return tc.body
			})
			if !errors.Is(err, tc.wantErr) || (tc.wantErr == nil && err != nil) {
				t.Fatalf("err: want=%v got=%v", tc.wantErr, err)
			}
			if called != tc.wantBodyCalled {
				t.Fatalf("body called: want=%v got=%v", tc.wantBodyCalled, called)
			}
			if tc.runner.BeginCalls != 1 || tc.runner.CommitCalls != tc.wantCommit || tc.runner.RollbackCalls != tc.wantRollback {
				t.Fatalf("counters begin=%d commit=%d rollback=%d", tc.runner.BeginCalls, tc.runner.CommitCalls, tc.runner.RollbackCalls)
			}
		})
	}
}

type innerRunner struct{ results []error }

func (r *innerRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	err := fn(dbctx.Of(ctx))
	r.results = append(r.results, err)
	return err
}

func TestInjectedTxRunnerFailsCommitInsideInner(t *testing.T) {
	boom := errors.New("commit failed")
	inner := &innerRunner{}
	r := &InjectedTxRunner{Inner: inner, FailCommit: boom}
	err := r.InTx(context.Background(), func(_ dbctx.Context) error { return nil })
	if !errors.Is(err, boom) {
		t.Fatalf("expected commit err, got %v", err)
	}
	if len(inner.results) != 1 || !errors.Is(inner.results[0], boom) {
		t.Fatalf("inner runner should see the commit failure, got %v", inner.results)
	}
}
