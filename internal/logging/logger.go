// Package logging builds the zap logger shared by the server and the notifier.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a development logger for dev/local environments and a JSON
// production logger otherwise.  service is attached to every entry.
func New(env, service string) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case "dev", "local":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service.name", service)),
	)
}
