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

func TestNewTagsComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(Config{Level: slog.LevelDebug, Component: ComponentRates, Output: buf})

	l.Info("rates fetched", FieldDate, "15.12.2024")

	out := buf.String()
	if !strings.Contains(out, "component=rates") {
		t.Fatalf("expected component in output, got %q", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("component should be logged once, got %q", out)
	}
	if l.Component() != ComponentRates {
		t.Fatalf("Component() = %q", l.Component())
	}
}

func TestWithComponentReplacesName(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(Config{Component: ComponentApp, Output: buf}).WithComponent(ComponentReport)

	l.Warn("empty report")

	out := buf.String()
	if !strings.Contains(out, "component=report") || strings.Contains(out, "component=app") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFailureAddsErrorFields(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(Config{Output: buf})

	l.Failure(context.Background(), "fetch failed", errors.New("boom"), OpFetch, ErrorTypeNetwork,
		NewFields().WithRate("USD", "15.12.2024"))

	out := buf.String()
	for _, want := range []string{"level=ERROR", "error=boom", "operation=fetch", "error_type=network_error", "currency=USD"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestToSliceIsSorted(t *testing.T) {
	got := NewFields().With("b", 2).With("a", 1).ToSlice()
	if len(got) != 4 || got[0] != "a" || got[2] != "b" {
		t.Fatalf("unexpected slice %v", got)
	}
}

func TestMiddlewareStoresLoggerAndRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	base := New(Config{Component: ComponentHTTP, Output: buf})

	var seen *Logger
	h := Middleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/home", nil)
	req.Header.Set("X-Request-ID", "req-1")
	h.ServeHTTP(rr, req)

	if seen == nil || seen.Component() != ComponentHTTP {
		t.Fatalf("handler did not receive request logger")
	}
	if rr.Header().Get("X-Request-ID") != "req-1" {
		t.Fatalf("request id not echoed: %q", rr.Header().Get("X-Request-ID"))
	}
	out := buf.String()
	if !strings.Contains(out, "request_id=req-1") || !strings.Contains(out, "status_code=418") {
		t.Fatalf("unexpected access log %q", out)
	}
}

func TestFromContextDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
