package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/md-hub/md-hub/internal/config"
)

// DefaultLevel 是配置未给出级别时的兜底值。
const DefaultLevel = "info"

// InitLogger 构建 md-hub 的结构化日志器：JSON 输出，按配置写入
// 滚动文件。日志器全部通过依赖注入传递，不设置 logrus 的全局实例。
// 文件输出不可用时退回 stdout，进程不因日志落盘失败而中止。
func InitLogger(cfg config.GlobalConfig) (*logrus.Logger, error) {
	levelName := cfg.LogLevel
	if levelName == "" {
		levelName = DefaultLevel
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("无法解析日志级别 %q: %w", cfg.LogLevel, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	logger.SetOutput(os.Stdout)

	if cfg.LogFilePath == "" {
		return logger, nil
	}

	out, err := fileWriter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log_fallback: %v\n", err)
		logger.WithFields(logrus.Fields{
			"action":   "log_fallback",
			"log_file": cfg.LogFilePath,
		}).Warn(err.Error())
		return logger, nil
	}
	logger.SetOutput(out)
	return logger, nil
}

// fileWriter 打开滚动日志文件，目录不存在时先行创建。
func fileWriter(cfg config.GlobalConfig) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}, nil
}
