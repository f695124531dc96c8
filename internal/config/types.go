package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述网关与数据访问层共享的全局运行时行为。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`

	// APIBaseURL 指向文档服务的 REST 根地址，/api/* 请求全部转发至此。
	// WSBaseURL 仅透传给前端启动配置，本进程不主动建立 WebSocket 连接。
	APIBaseURL string `mapstructure:"APIBaseURL"`
	WSBaseURL  string `mapstructure:"WSBaseURL"`

	UpstreamTimeout Duration `mapstructure:"UpstreamTimeout"`

	// 三档 staleness 窗口：列表/详情 30s，渲染结果 60s（源内容不变时
	// 渲染输出不变，窗口可以更长）。
	ListStaleTTL   Duration `mapstructure:"ListStaleTTL"`
	DetailStaleTTL Duration `mapstructure:"DetailStaleTTL"`
	RenderStaleTTL Duration `mapstructure:"RenderStaleTTL"`

	CacheCleanupInterval Duration `mapstructure:"CacheCleanupInterval"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
}

// HasWSBaseURL 表示配置是否提供了 WebSocket 根地址。
func (g GlobalConfig) HasWSBaseURL() bool {
	return strings.TrimSpace(g.WSBaseURL) != ""
}
