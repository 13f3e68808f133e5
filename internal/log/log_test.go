package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentAuth, Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestLoggerAddsComponentAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	ctx := WithRequestID(context.Background(), "req_123")
	logger.InfoContext(ctx, "User logged in", FieldUserID, "u1")
	logger.WithComponent(ComponentLedger).Info("no request")

	recs := decodeLines(t, &buf)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0][FieldComponent] != ComponentAuth || recs[0][FieldRequestID] != "req_123" {
		t.Errorf("first record = %v", recs[0])
	}
	if recs[1][FieldComponent] != ComponentLedger {
		t.Errorf("second record component = %v, want %s", recs[1][FieldComponent], ComponentLedger)
	}
	if _, ok := recs[1][FieldRequestID]; ok {
		t.Errorf("second record has a request id without one in context: %v", recs[1])
	}
}

func TestHTTPLoggerLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{500, "ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		hl := NewHTTPLogger(newBufferLogger(&buf))
		r := httptest.NewRequest("GET", "/api/expense/get?page=2", nil)

		hl.LogEnd(context.Background(), r, tt.status, 12, "10.0.0.1")

		recs := decodeLines(t, &buf)
		if len(recs) != 1 {
			t.Fatalf("status %d: got %d records", tt.status, len(recs))
		}
		rec := recs[0]
		if rec["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, rec["level"], tt.level)
		}
		if rec[FieldQuery] != "page=2" || rec[FieldComponent] != ComponentHTTP {
			t.Errorf("status %d: record = %v", tt.status, rec)
		}
		if rec[FieldSuccess] != (tt.status < 400) {
			t.Errorf("status %d: success = %v", tt.status, rec[FieldSuccess])
		}
	}
}

func TestHTTPLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	hl := NewHTTPLogger(newBufferLogger(&buf))

	hl.LogError(context.Background(), "Export failed", errors.New("disk full"), ComponentExport, OpExport, NewFields().WithUser("u1"))

	recs := decodeLines(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec[FieldComponent] != ComponentExport || rec[FieldOperation] != OpExport || rec[FieldError] != "disk full" || rec[FieldUserID] != "u1" {
		t.Errorf("record = %v", rec)
	}
}
