package config

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/footcache/footcache/internal/estimate"
)

var supportedLogFormats = map[string]struct{}{
	"json": {},
	"text": {},
}

// Validate 针对语义级别做进一步校验，防止非法配置启动。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "无法识别的日志级别: "+g.LogLevel)
	}
	if _, ok := supportedLogFormats[g.LogFormat]; !ok {
		return newFieldError("Global.LogFormat", "仅支持 json/text")
	}
	if g.LogMaxSize < 0 {
		return newFieldError("Global.LogMaxSize", "不能为负数")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxBackups", "不能为负数")
	}
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.ReadTimeout.DurationValue() <= 0 {
		return newFieldError("Global.ReadTimeout", "必须大于 0")
	}
	if g.WriteTimeout.DurationValue() <= 0 {
		return newFieldError("Global.WriteTimeout", "必须大于 0")
	}

	cache := c.Cache
	if strings.TrimSpace(cache.Path) == "" {
		return newFieldError(cacheField("Path"), "不能为空")
	}
	if strings.HasSuffix(cache.Path, "/") {
		return newFieldError(cacheField("Path"), "必须指向文件而非目录")
	}
	if _, err := estimate.ParseGroupBy(cache.DefaultGroupBy); err != nil {
		return newFieldError(cacheField("DefaultGroupBy"), "仅支持 day/week/month/quarter/year")
	}

	return nil
}
