// Package logger provides structured logging capabilities for the application.
// It wraps uber-go/zap for leveled logging with text or JSON output and
// optional rotated log files.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Global logger instance
	globalLogger *zap.Logger
	once         sync.Once
)

// Config is the logging section of the configuration file
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
	// Output selects the console stream (stderr, stdout). Command output goes to
	// stdout, so the default keeps logs off it.
	Output string `yaml:"output"`
	// File is an optional log file, rotated by size
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxAge     int    `yaml:"max_age"`     // days
	MaxBackups int    `yaml:"max_backups"` // rotated files kept
	Compress   bool   `yaml:"compress"`
	// AccessLog prints successful bridge server requests at info level
	AccessLog bool `yaml:"access_log"`
}

// Rotation defaults for the log file
const (
	defaultMaxSizeMB  = 100
	defaultMaxAgeDays = 7
	defaultMaxBackups = 5
)

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Init initializes the global logger with the given configuration.
// This function is safe to call multiple times; only the first call will take effect.
func Init(cfg Config) error {
	var initErr error
	once.Do(func() {
		globalLogger, initErr = New(cfg)
	})
	return initErr
}

// New builds a logger without touching the global instance.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg.MaxSize = orDefault(cfg.MaxSize, defaultMaxSizeMB)
	cfg.MaxAge = orDefault(cfg.MaxAge, defaultMaxAgeDays)
	cfg.MaxBackups = orDefault(cfg.MaxBackups, defaultMaxBackups)

	console, err := consoleWriter(cfg.Output)
	if err != nil {
		return nil, err
	}

	var consoleEnc, fileEnc zapcore.Encoder
	if cfg.Format == "text" {
		consoleEnc = newKVEncoder(true)
		fileEnc = newKVEncoder(false)
	} else {
		consoleEnc = zapcore.NewJSONEncoder(jsonEncoderConfig())
		fileEnc = consoleEnc.Clone()
	}

	core := zapcore.NewCore(consoleEnc, zapcore.AddSync(console), level)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log directory: %v, using console only\n", err)
		} else {
			fileWriter := zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxAge:     cfg.MaxAge,
				MaxBackups: cfg.MaxBackups,
				Compress:   cfg.Compress,
			})
			core = zapcore.NewTee(core, zapcore.NewCore(fileEnc, fileWriter, level))
		}
	}

	// No AddCallerSkip here; only the package-level wrappers need it.
	return zap.New(newRedactCore(core),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

func consoleWriter(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		return nil, fmt.Errorf("unknown log output %q (want stderr or stdout)", output)
	}
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// parseLevel converts a string level to zapcore.Level
func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	err := l.UnmarshalText([]byte(level))
	return l, err
}

// Get returns the global logger, or a no-op logger before Init.
func Get() *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// With returns a child of the global logger carrying fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Named returns a child of the global logger, e.g. "paging" or "gitee"
func Named(name string) *zap.Logger {
	return Get().Named(name)
}

// helper reports the caller of the package-level functions below
func helper() *zap.Logger {
	return Get().WithOptions(zap.AddCallerSkip(1))
}

func Debug(msg string, fields ...zap.Field) { helper().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { helper().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { helper().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { helper().Error(msg, fields...) }

// Sync flushes buffered entries. Safe before Init.
func Sync() error {
	if globalLogger == nil {
		return nil
	}
	return globalLogger.Sync()
}
