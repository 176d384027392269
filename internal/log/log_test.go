package log

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConfigureDefault(t *testing.T) {
	Configure(Options{})

	if Logger() == nil {
		t.Error("Logger should not be nil after Configure")
	}
}

func TestConfigureWithOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{
		Output: &buf,
		Level:  LevelInfo,
	})

	Info("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("log output = %q, want to contain %q", buf.String(), "test message")
	}
	if !strings.Contains(buf.String(), "cm") {
		t.Errorf("log output = %q, want the cm prefix", buf.String())
	}
}

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{
		Output: &buf,
		JSON:   true,
		Level:  LevelInfo,
	})

	Info("json test")

	if !strings.Contains(buf.String(), `"msg":"json test"`) {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestConfigureVerbose(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{
		Output:  &buf,
		Verbose: true,
	})

	Debug("debug message")

	if !strings.Contains(buf.String(), "debug message") {
		t.Error("debug should be visible with Verbose=true")
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		log     func(string, ...any)
		visible bool
	}{
		{name: "info hidden at warn", level: LevelWarn, log: Info, visible: false},
		{name: "info shown at info", level: LevelInfo, log: Info, visible: true},
		{name: "debug hidden at info", level: LevelInfo, log: Debug, visible: false},
		{name: "debug shown at debug", level: LevelDebug, log: Debug, visible: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Configure(Options{Output: &buf, Level: tt.level})

			tt.log("filtered line")

			if got := strings.Contains(buf.String(), "filtered line"); got != tt.visible {
				t.Errorf("visible = %v, want %v (output %q)", got, tt.visible, buf.String())
			}
		})
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{
		Output: &buf,
		Level:  LevelInfo,
	})

	With("key", "value").Info("with attributes")
	if !strings.Contains(buf.String(), "key") || !strings.Contains(buf.String(), "value") {
		t.Errorf("attributes should appear in output, got %q", buf.String())
	}
}

func TestContextLogging(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{
		Output: &buf,
		Level:  LevelDebug,
	})

	ctx := context.Background()

	DebugContext(ctx, "debug ctx")
	if !strings.Contains(buf.String(), "debug ctx") {
		t.Error("DebugContext should log")
	}

	buf.Reset()
	WarnContext(ctx, "warn ctx")
	if !strings.Contains(buf.String(), "warn ctx") {
		t.Error("WarnContext should log")
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != "error" {
		t.Errorf("Err().Key = %q, want %q", attr.Key, "error")
	}
}

func TestItem(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Output: &buf, JSON: true, Level: LevelInfo})

	Info("updated", Item("core", "singbox")...)

	out := buf.String()
	if !strings.Contains(out, `"kind":"core"`) || !strings.Contains(out, `"item":"singbox"`) {
		t.Errorf("Item attrs missing from %q", out)
	}
}
