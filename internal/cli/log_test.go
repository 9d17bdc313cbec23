package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("computed array", "name", "columns", "items", 3)

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("log line %q does not start with an HH:MM:SS.ms timestamp", line)
	}
	for _, want := range []string{"computed array", "name=columns", "items=3"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q missing %q", line, want)
		}
	}
}

func TestVerboseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		want  bool
	}{
		{"default hides cache details", LogInfo, false},
		{"verbose shows cache details", LogDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf, LogInfo)
			c.SetLogLevel(tt.level)
			c.Logger.Debug("cache miss", "definition", "ring")
			if got := strings.Contains(buf.String(), "cache miss"); got != tt.want {
				t.Errorf("debug output written = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeLogsArrays(t *testing.T) {
	ws := newWorkspace(t)
	var buf bytes.Buffer
	c := New(&buf, LogDebug)
	root := c.RootCommand()
	root.SetArgs([]string{"--config", ws.config, "compute", "-o", ws.out, ws.def})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("compute error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"computed array", "name=columns", "items=3", "computed arrays", "count=1", "cached=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, LogInfo)).done("computed arrays", "count", 2)

	if !regexp.MustCompile(`computed arrays count=2 elapsed=[0-9.]+[a-zµ]+`).MatchString(buf.String()) {
		t.Errorf("progress line = %q, want message, keyvals and elapsed time", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should return log.Default()")
	}
	l := newLogger(&bytes.Buffer{}, LogInfo)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}
