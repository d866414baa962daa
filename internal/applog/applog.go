// Package applog provides the CLI's structured logger. The core
// pipeline never logs; only cmd/ and the ambient adapters use this.
package applog

import "go.uber.org/zap"

// Logger is the process-wide CLI logger, set by InitProduction or
// InitDevelopment.
var Logger *zap.Logger

// InitProduction sets Logger to a production (JSON, info-level) zap
// logger.
func InitProduction() {
	Logger, _ = zap.NewProduction()
}

// InitDevelopment sets Logger to a development (console, debug-level)
// zap logger.
func InitDevelopment() {
	Logger, _ = zap.NewDevelopment()
}
