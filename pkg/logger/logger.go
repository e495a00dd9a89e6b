package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"marina-guard/backend/config"
)

// NewLogger builds the zap logger from config. Format "console" gives the
// coloured development encoder, anything else JSON. Every line carries the
// service name when one is configured.
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	zapCfg, err := newZapConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger, err := zapCfg.Build(baseFields(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}

func newZapConfig(cfg *config.LogConfig) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "time"
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stacks at debug only
	zapCfg.DisableStacktrace = level > zapcore.DebugLevel

	return zapCfg, nil
}

func baseFields(cfg *config.LogConfig) []zap.Option {
	if cfg.Service == "" {
		return nil
	}
	return []zap.Option{zap.Fields(zap.String("service", cfg.Service))}
}
