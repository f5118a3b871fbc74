package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/log"
)

// Init installs a terminal handler as the default geth logger
func Init(w io.Writer, level string) {
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(w, ParseLevel(level), true)))
}

// ParseLevel maps a LOG_LEVEL value to a log level, defaulting to info
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "crit":
		return log.LevelCrit
	default:
		return log.LevelInfo
	}
}
