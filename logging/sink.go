// Package logging provides the pluggable text sink entities and the kernel
// write diagnostic lines to. It intentionally stays a single-method interface
// plus a single stdlib-backed default; it is a collaborator, not a framework.
package logging

import (
	"log"
	"os"
)

// Sink receives a single human-readable, timestamped log line. No structured
// format is mandated; implementations decide how (or whether) to persist it.
type Sink interface {
	Printf(format string, args ...any)
}

// StdSink adapts a standard library *log.Logger to Sink. The zero value is
// not usable; use NewStdSink.
type StdSink struct {
	logger *log.Logger
}

// NewStdSink returns a Sink that writes to os.Stderr with a time prefix.
func NewStdSink() *StdSink {
	return &StdSink{logger: log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)}
}

// NewStdSinkTo wraps an existing *log.Logger.
func NewStdSinkTo(l *log.Logger) *StdSink {
	return &StdSink{logger: l}
}

func (s *StdSink) Printf(format string, args ...any) {
	s.logger.Printf(format, args...)
}

// Nop discards every line. Useful as a default when no sink is configured.
type Nop struct{}

func (Nop) Printf(string, ...any) {}
