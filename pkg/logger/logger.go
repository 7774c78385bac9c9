// Package logger zap 日志构建，支持按大小滚动的文件输出
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志输出格式
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	// ErrInvalidLevel 无法识别的日志级别
	ErrInvalidLevel = errors.New("logger: invalid level")
	// ErrInvalidFormat 无法识别的输出格式
	ErrInvalidFormat = errors.New("logger: invalid format")
)

// Config 日志配置
type Config struct {
	// Level 日志级别：debug、info、warn、error，默认 info
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	// Format 输出格式：json、console，默认 json
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	// File 日志文件路径，为空时输出到 stderr
	File string `mapstructure:"file"`
	// MaxSizeMB 单个文件最大体积（MB）
	MaxSizeMB int `mapstructure:"max_size_mb" validate:"gte=0"`
	// MaxBackups 保留的旧文件个数
	MaxBackups int `mapstructure:"max_backups" validate:"gte=0"`
	// MaxAgeDays 旧文件保留天数
	MaxAgeDays int `mapstructure:"max_age_days" validate:"gte=0"`
	// Compress 是否压缩旧文件
	Compress bool `mapstructure:"compress"`
}

// New 按配置创建 zap 日志
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(newWriter(cfg)), level)
	return zap.New(core, zap.AddCaller()), nil
}

// NewWithWriter 输出到指定 writer，主要用于测试和嵌入场景
func NewWithWriter(cfg Config, w io.Writer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level)), nil
}

func parseLevel(text string) (zapcore.Level, error) {
	if strings.TrimSpace(text) == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(text)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, text)
	}
	return level, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case "", FormatJSON:
		return zapcore.NewJSONEncoder(encoderConfig), nil
	case FormatConsole:
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
}

func newWriter(cfg Config) io.Writer {
	if cfg.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
