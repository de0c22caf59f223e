package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: component, Output: buf})
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentAPI)
	l.Info("hello", FieldASICID, "a1")

	out := buf.String()
	if !strings.Contains(out, "component=api") || !strings.Contains(out, "asic_id=a1") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentForm).Warn("switched")
	if !strings.Contains(buf.String(), "component=form") {
		t.Fatalf("expected form component, got: %s", buf.String())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("expected default logger with unknown component, got %+v", l)
	}
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf, ComponentHTTP)

	var got *Logger
	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			got.Info("inside")
		})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got == nil {
		t.Fatal("handler not called")
	}
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("expected request id in log, got: %s", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentForm))

	sl.LogRevenueFetched(context.Background(), "a1", "s", "e", "USD", 2, 500)
	out := buf.String()
	for _, want := range []string{"operation=submit", "points=2", "total=500", "unit=USD"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("Network error"), OpFetch, nil)
	if !strings.Contains(buf.String(), `error="Network error"`) {
		t.Fatalf("expected error field, got: %s", buf.String())
	}
}
