package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureJSONAndLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	var buf bytes.Buffer
	l := logrus.New()
	configure(l, &buf)

	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", l.GetLevel())
	}
	l.WithField("seed", "abc").Debug("phase")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["seed"] != "abc" || entry["msg"] != "phase" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestConfigureFallsBackToInfoText(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	t.Setenv("LOG_FORMAT", "")

	var buf bytes.Buffer
	l := logrus.New()
	configure(l, &buf)

	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %v", l.GetLevel())
	}
	l.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("expected text output, got %q", buf.String())
	}
}

func TestOr(t *testing.T) {
	if Or(nil) != logrus.FieldLogger(Log) {
		t.Fatal("nil should fall back to the global logger")
	}
	d := Discard()
	if Or(d) != logrus.FieldLogger(d) {
		t.Fatal("non-nil logger should be returned as is")
	}
}
