// Package logging builds the service's zap logger.
package logging

import "go.uber.org/zap"

// New returns a development logger when development is set, a production
// JSON logger otherwise.
func New(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Must is New for use in main, where a logger failure is fatal.
func Must(development bool) *zap.Logger {
	logger, err := New(development)
	if err != nil {
		panic(err)
	}
	return logger.Named("scango")
}
