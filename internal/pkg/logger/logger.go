package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ninjin/internal/config"
)

// Init 初始化全局日志
func Init(cfg *config.LogConfig) error {
	output, err := openOutput(cfg)
	if err != nil {
		return err
	}

	log.Logger = New(cfg, output)
	return nil
}

// New 按配置创建写入 w 的 logger，同时设置全局级别与时间格式
func New(cfg *config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	switch cfg.TimeFormat {
	case "Unix":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	case "UnixMs":
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	default:
		zerolog.TimeFieldFormat = time.RFC3339
	}

	// Console 格式 (终端友好)
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(w).With().Timestamp().Logger()
}

// openOutput 日志输出到 stderr，保持 stdout 只承载任务状态行
func openOutput(cfg *config.LogConfig) (io.Writer, error) {
	if cfg.Output == "file" && cfg.FilePath != "" {
		return os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	}
	if cfg.Output == "stdout" {
		return os.Stdout, nil
	}
	return os.Stderr, nil
}
