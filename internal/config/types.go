package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/footcache/footcache/internal/cache"
	"github.com/footcache/footcache/internal/estimate"
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

	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述进程级行为：日志与 HTTP 服务参数。
type GlobalConfig struct {
	LogLevel      string   `mapstructure:"LogLevel"`
	LogFormat     string   `mapstructure:"LogFormat"`
	LogFilePath   string   `mapstructure:"LogFilePath"`
	LogMaxSize    int      `mapstructure:"LogMaxSize"`
	LogMaxBackups int      `mapstructure:"LogMaxBackups"`
	LogCompress   bool     `mapstructure:"LogCompress"`
	ListenPort    int      `mapstructure:"ListenPort"`
	ReadTimeout   Duration `mapstructure:"ReadTimeout"`
	WriteTimeout  Duration `mapstructure:"WriteTimeout"`
}

// CacheConfig 决定缓存文件位置与写入格式。
type CacheConfig struct {
	Path           string `mapstructure:"Path"`
	DefaultGroupBy string `mapstructure:"DefaultGroupBy"`
	PrettyPrint    bool   `mapstructure:"PrettyPrint"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Cache  CacheConfig  `mapstructure:"Cache"`
}

// GroupBy 返回已校验的默认粒度（假定 Validate 已经通过）。
func (c CacheConfig) GroupBy() estimate.GroupBy {
	g, err := estimate.ParseGroupBy(c.DefaultGroupBy)
	if err != nil {
		return estimate.DefaultGroupBy
	}
	return g
}

// WriteOptions 将配置映射为缓存写入选项。
func (c CacheConfig) WriteOptions() cache.WriteOptions {
	return cache.WriteOptions{Indent: c.PrettyPrint}
}
