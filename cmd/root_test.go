package cmd

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	cmd := newVersionCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	assert.Equal(t, "upnext version 1.2.3\n", buf.String())
	assert.Equal(t, "1.2.3", rootCmd.Version)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestViewFlagsBuildRequest(t *testing.T) {
	var flags viewFlags
	cmd := newAgendaCmd()

	require.NoError(t, cmd.Flags().Set("project-id", "p1"))
	require.NoError(t, cmd.Flags().Set("search", "tax"))
	require.NoError(t, cmd.Flags().Set("priority", "4"))

	// the command registered its own flag set; mirror it on a fresh one to
	// check the request mapping
	flags.projectID = "p1"
	flags.search = "tax"
	flags.priority = 4
	flags.labels = []string{"work"}

	req := flags.request()
	assert.Equal(t, "p1", req.ProjectID)
	assert.Equal(t, "tax", req.Filter.Search)
	assert.Equal(t, 4, req.Filter.Priority)
	assert.Equal(t, []string{"work"}, req.Filter.Labels)
	assert.False(t, req.Now.IsZero())
}
