package logging

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a rotating log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewFileLogger returns a logger writing to stdout and to a rotating file. Rotation is
// handled by lumberjack; the returned closer must be called on shutdown.
func NewFileLogger(name string, level Level, cfg FileConfig) (Logger, func() error, error) {
	if cfg.Path == "" {
		return nil, nil, errors.New("log file path must be set")
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	atomicLevel := NewAtomicLevelAt(level)
	fileEncoderConfig := NewEncoderConfig()
	fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(NewEncoderConfig()), zapcore.Lock(os.Stdout), atomicLevel.zap),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(rotator), atomicLevel.zap),
	)
	return newImpl(name, atomicLevel, core), rotator.Close, nil
}
