package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/plugforge/plugforge/pkg/logger"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.Debug("hidden detail")
	log.Info("something happened")
	log.Warn("careful now")
	log.Error("it broke")

	output := buf.String()
	if strings.Contains(output, "hidden detail") {
		t.Error("debug message should be filtered at info level")
	}
	for _, want := range []string{"something happened", "careful now", "it broke"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if !strings.Contains(output, "WARN") || !strings.Contains(output, "ERROR") {
		t.Errorf("output missing level labels:\n%s", output)
	}
}

func TestDebugLevelPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "debug", &buf)

	log.Debug("verbose")
	if !strings.Contains(buf.String(), "verbose") {
		t.Errorf("debug message missing:\n%s", buf.String())
	}
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "chatty", &buf)

	log.Debug("hidden")
	log.Info("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("unknown level should default to info filtering")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("info message missing:\n%s", buf.String())
	}
}

func TestWithScopePrefixesMessages(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.WithScope("4.26.2").Info("packaging")

	if !strings.Contains(buf.String(), "[4.26.2] packaging") {
		t.Errorf("expected scope prefix in output:\n%s", buf.String())
	}
}

func TestFieldsAppended(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.Info("built", logger.WithField("platforms", "Win64+Android"))

	if !strings.Contains(buf.String(), "platforms=Win64+Android") {
		t.Errorf("expected field in output:\n%s", buf.String())
	}
}

func TestSuccessMarksMessage(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.Success("packaged 4.26.2")

	if !strings.Contains(buf.String(), "✅ packaged 4.26.2") {
		t.Errorf("expected success marker:\n%s", buf.String())
	}
}
