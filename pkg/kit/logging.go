package kit

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogOptions struct {
	Level string
	// File enables a rotating JSON log file next to stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func NewLogger(service string, opts LogOptions) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.InitialFields = map[string]any{"service": service}

	if opts.File == "" {
		return cfg.Build()
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    orDefault(opts.MaxSizeMB, 64),
		MaxBackups: orDefault(opts.MaxBackups, 7),
		MaxAge:     orDefault(opts.MaxAgeDays, 7),
	}

	enc := zapcore.NewJSONEncoder(cfg.EncoderConfig)
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(rotator), level),
		zapcore.NewCore(enc.Clone(), zapcore.Lock(os.Stdout), level),
	)

	return zap.New(core, zap.AddCaller()).With(zap.String("service", service)), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
