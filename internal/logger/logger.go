// Package logger constructs the engine's structured loggers.
package logger

import (
	"go.uber.org/zap"
)

// New returns a production logger named for the given service.
func New(service string) *zap.SugaredLogger {
	log, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop().Sugar().Named(service)
	}
	return log.Sugar().Named(service)
}

// NewVerbose returns a development logger at debug level, used when the
// CLI runs with --verbose.
func NewVerbose(service string) *zap.SugaredLogger {
	log, err := zap.NewDevelopment()
	if err != nil {
		return New(service)
	}
	return log.Sugar().Named(service)
}

// Nop returns a logger that discards everything. Queries run silent by
// default; diagnostics are opt-in.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
