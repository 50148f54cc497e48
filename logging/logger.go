// Package logging builds the service's zap logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options 日志配置
type Options struct {
	Level      string
	File       string // 为空时只输出到 stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New 创建 JSON 格式的 zap 日志，级别可通过返回的 AtomicLevel 动态调整
func New(opts Options) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevel()
	if err := SetLevel(level, opts.Level); err != nil {
		return nil, level, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.TimeKey = "time"

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if opts.File != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(sinks...),
		level,
	)
	return zap.New(core, zap.AddCaller()), level, nil
}

// SetLevel 解析级别文本并应用，空字符串视为 info
func SetLevel(level zap.AtomicLevel, text string) error {
	if text == "" {
		text = "info"
	}
	parsed, err := zapcore.ParseLevel(text)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", text, err)
	}
	level.SetLevel(parsed)
	return nil
}
