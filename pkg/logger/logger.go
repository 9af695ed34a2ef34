package logger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	Level      string // debug / info / warn / error
	File       string // 日志文件路径，为空时只输出到控制台
	Production bool   // 生产模式输出 JSON，否则输出彩色控制台格式
}

// NewLogger builds a zap logger writing to stderr and, when configured, a file.
// NewLogger 创建日志器，同时输出到控制台与日志文件
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zapcore.InfoLevel
	}

	fileEncCfg := zap.NewProductionEncoderConfig()
	fileEncCfg.TimeKey = "time"
	fileEncCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	consoleEncCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	consoleEncCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	var consoleEncoder zapcore.Encoder
	if cfg.Production {
		consoleEncoder = zapcore.NewJSONEncoder(fileEncCfg)
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(consoleEncCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0754); err != nil {
			return nil, errors.Wrap(err, "logger: create log dir")
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, errors.Wrap(err, "logger: open log file")
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncCfg), zapcore.AddSync(f), level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !cfg.Production {
		opts = append(opts, zap.Development())
	}

	return zap.New(zapcore.NewTee(cores...), opts...), nil
}
