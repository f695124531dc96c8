package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if err := validateBaseURL(g.APIBaseURL, "http", "https"); err != nil {
		return fmt.Errorf("Global.APIBaseURL: %w", err)
	}
	if g.HasWSBaseURL() {
		if err := validateBaseURL(g.WSBaseURL, "ws", "wss"); err != nil {
			return fmt.Errorf("Global.WSBaseURL: %w", err)
		}
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Global.UpstreamTimeout", "必须大于 0")
	}
	if g.ListStaleTTL.DurationValue() <= 0 {
		return newFieldError("Global.ListStaleTTL", "必须大于 0")
	}
	if g.DetailStaleTTL.DurationValue() <= 0 {
		return newFieldError("Global.DetailStaleTTL", "必须大于 0")
	}
	if g.RenderStaleTTL.DurationValue() <= 0 {
		return newFieldError("Global.RenderStaleTTL", "必须大于 0")
	}
	if g.CacheCleanupInterval.DurationValue() <= 0 {
		return newFieldError("Global.CacheCleanupInterval", "必须大于 0")
	}

	return nil
}

func validateBaseURL(raw string, schemes ...string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("缺少服务地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	allowed := false
	for _, scheme := range schemes {
		if parsed.Scheme == scheme {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("仅支持 %s，得到: %s", strings.Join(schemes, "/"), raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("地址缺少 Host: %s", raw)
	}
	return nil
}
