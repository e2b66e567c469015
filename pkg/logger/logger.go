// Package logger содержит логгер приложения поверх zap.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger — интерфейс логгера, который принимают все слои приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
	With(key string, value any) Logger
}

// ZapLogger реализует Logger поверх zap.SugaredLogger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger создаёт production-логгер с заданным уровнем ("debug", "info", "warn", "error").
func NewZapLogger(level string) (*ZapLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = lvl
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &ZapLogger{sugar: log.Sugar()}, nil
}

// NewNop возвращает логгер, который ничего не пишет. Используется в тестах.
func NewNop() *ZapLogger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *ZapLogger) Debugf(format string, args ...any) {
	l.writer().Debugf(format, args...)
}

func (l *ZapLogger) Infof(format string, args ...any) {
	l.writer().Infof(format, args...)
}

func (l *ZapLogger) Warnf(format string, args ...any) {
	l.writer().Warnf(format, args...)
}

// Errorf пишет сообщение уровня error и прикладывает err отдельным полем.
func (l *ZapLogger) Errorf(err error, format string, args ...any) {
	l.writer().With(zap.Error(err)).Errorf(format, args...)
}

func (l *ZapLogger) With(key string, value any) Logger {
	return &ZapLogger{sugar: l.writer().With(key, value)}
}

// Sync сбрасывает буферы zap.
func (l *ZapLogger) Sync() error {
	return l.writer().Sync()
}

func (l *ZapLogger) writer() *zap.SugaredLogger {
	if l == nil || l.sugar == nil {
		return zap.NewNop().Sugar()
	}

	return l.sugar
}
