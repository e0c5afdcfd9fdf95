package logging

import (
	"fmt"
	"log"
	"log/slog"
)

// SlogAdapter exposes an slog.Logger through the printf-style interface
// the MCP transports log through (Infof / Errorf).
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Infof logs a formatted message at info level.
func (a *SlogAdapter) Infof(format string, v ...any) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

// Errorf logs a formatted message at error level.
func (a *SlogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// StdLogger returns a *log.Logger writing to the slog logger at error
// level, for APIs that only accept the standard logger.
func (a *SlogAdapter) StdLogger() *log.Logger {
	return slog.NewLogLogger(a.logger.Handler(), slog.LevelError)
}

// Logger returns the underlying slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
