package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestAttributeHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, FormatJSON, slog.LevelInfo)

	logger.Info("fetched tasks",
		Operation("listTasks"),
		Resource("tasks"),
		TaskID("t1"),
		Status(StatusSuccess),
	)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}

	want := map[string]string{
		KeyOperation: "listTasks",
		KeyResource:  "tasks",
		KeyTaskID:    "t1",
		KeyStatus:    StatusSuccess,
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("attribute %s = %v, want %s", k, line[k], v)
		}
	}
}

func TestErrNil(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, FormatJSON, slog.LevelInfo)

	logger.Info("done", Err(nil))

	if strings.Contains(buf.String(), KeyError) {
		t.Errorf("nil error must not emit an error attribute, got %s", buf.String())
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{
			name:  "empty token",
			token: "",
			want:  "<empty>",
		},
		{
			name:  "token content hidden",
			token: "abcdef123456",
			want:  "[token:12 chars]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.token)
			if got != tt.want {
				t.Errorf("SanitizeToken() = %q, want %q", got, tt.want)
			}
			if tt.token != "" && strings.Contains(got, tt.token) {
				t.Error("sanitized output leaks the token")
			}
		})
	}
}

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, FormatText, slog.LevelDebug)
	logger.Debug("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("text logger output = %q, want the message", buf.String())
	}

	buf.Reset()
	logger = New(&buf, FormatJSON, slog.LevelInfo)
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line emitted at info level: %q", buf.String())
	}
}
