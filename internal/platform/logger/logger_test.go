package logger

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSanitizeKVs(t *testing.T) {
	child := uuid.New()
	jwtLike := "eyJhbGciOiJIUzI1NiJ9.eyJjaGlsZF9pZCI6IngifQ.sig"
	kv := sanitizeKVs([]interface{}{
		"jwt_secret_key", "s3cret",
		"text", "Once upon a time",
		"child_id", child,
		"lesson_id", "narrative-1",
		"header", jwtLike,
		"dangling",
	})

	want := map[string]string{
		"jwt_secret_key": "[REDACTED]",
		"text":           "[16 chars]",
		"lesson_id":      "narrative-1",
		"header":         "[REDACTED]",
	}
	got := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		got[kv[i].(string)] = toString(kv[i+1])
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s: want=%q got=%q", k, v, got[k])
		}
	}
	if h := got["child_id"]; !strings.HasPrefix(h, "hash:") || strings.Contains(h, child.String()) {
		t.Fatalf("child id not hashed: %q", h)
	}
	if kv[len(kv)-1] != "dangling" {
		t.Fatalf("odd trailing key must be kept")
	}
}
