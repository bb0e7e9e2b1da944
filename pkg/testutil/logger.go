package testutil

import (
	"io"
	"log/slog"
)

// NewTestLogger returns a logger that discards output. Keeps test logs quiet
// while satisfying constructors that require a logger.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
