package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/log"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"trace":   log.LevelTrace.String(),
		"DEBUG":   log.LevelDebug.String(),
		" warn ":  log.LevelWarn.String(),
		"warning": log.LevelWarn.String(),
		"error":   log.LevelError.String(),
		"":        log.LevelInfo.String(),
		"bogus":   log.LevelInfo.String(),
	}
	for raw, want := range tests {
		if got := ParseLevel(raw).String(); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestInitFiltersByLevel(t *testing.T) {
	prev := log.Root()
	defer log.SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, "warn")
	log.Info("hidden message")
	log.Warn("shown message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info line should be filtered:\n%s", out)
	}
	if !strings.Contains(out, "shown message") {
		t.Errorf("warn line missing:\n%s", out)
	}
}
