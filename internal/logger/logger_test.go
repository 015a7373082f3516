package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dataquill/tutorkit/internal/logger"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelWarn, "[test]")

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	out := buf.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Fatalf("low levels leaked through:\n%s", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Fatalf("high levels missing:\n%s", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelError, "[test]")

	log.Info("hidden")
	log.SetLevel(logger.LevelDebug)
	log.Info("visible %d", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("message logged below level:\n%s", out)
	}
	if !strings.Contains(out, "visible 7") {
		t.Fatalf("formatted message missing:\n%s", out)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "[tutorkit]")
	run := log.With("run=abc123")

	run.Info("lesson started")
	log.Info("untagged")

	out := buf.String()
	if !strings.Contains(out, "[tutorkit] run=abc123 [INFO] lesson started") {
		t.Fatalf("tag missing from child lines:\n%s", out)
	}
	if strings.Contains(out, "run=abc123 [INFO] untagged") {
		t.Fatalf("tag leaked into the parent logger:\n%s", out)
	}

	// Children inherit the level they were created at.
	run.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("child logger ignored its level:\n%s", buf.String())
	}
}

func TestPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "[tutorkit]")
	log.Info("hello")
	if !strings.Contains(buf.String(), "[tutorkit] [INFO] hello") {
		t.Fatalf("unexpected format: %q", buf.String())
	}
}
