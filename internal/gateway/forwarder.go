package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/md-hub/md-hub/internal/logging"
)

// Forwarder 把 /api/* 请求原样转发到文档服务：方法、路径、查询串、
// 请求体与非 hop-by-hop 头部全部透传，上游自己持有 /api 前缀的路由。
type Forwarder struct {
	client *http.Client
	base   *url.URL
	logger *logrus.Logger
}

// NewForwarder 解析上游根地址并创建转发器。只取 base 的 scheme 与
// host，请求路径保持原样拼接。
func NewForwarder(rawBaseURL string, client *http.Client, logger *logrus.Logger) (*Forwarder, error) {
	if strings.TrimSpace(rawBaseURL) == "" {
		return nil, errors.New("api base url required")
	}
	base, err := url.Parse(rawBaseURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Forwarder{
		client: client,
		base:   base,
		logger: logger,
	}, nil
}

// Handle 实现 Handler。上游不可达或请求构造失败统一映射为
// 502 {"error": "upstream_failed"}，不向前端暴露内部细节。
func (f *Forwarder) Handle(c fiber.Ctx) error {
	started := time.Now()
	requestID := RequestID(c)
	upstream := f.resolveUpstream(c)

	req, err := f.buildUpstreamRequest(c, upstream)
	if err != nil {
		f.logResult(c, upstream.String(), requestID, 0, started, err)
		return writeError(c, fiber.StatusBadGateway, "upstream_failed")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logResult(c, upstream.String(), requestID, 0, started, err)
		return writeError(c, fiber.StatusBadGateway, "upstream_failed")
	}
	defer resp.Body.Close()

	copyResponseHeaders(c, resp.Header)
	if requestID != "" {
		c.Set("X-Request-ID", requestID)
	}
	c.Status(resp.StatusCode)

	if c.Method() == http.MethodHead {
		f.logResult(c, upstream.String(), requestID, resp.StatusCode, started, nil)
		return nil
	}

	_, err = io.Copy(c.Response().BodyWriter(), resp.Body)
	f.logResult(c, upstream.String(), requestID, resp.StatusCode, started, err)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "forward stream failed")
	}
	return nil
}

func (f *Forwarder) resolveUpstream(c fiber.Ctx) *url.URL {
	upstream := &url.URL{
		Scheme: f.base.Scheme,
		Host:   f.base.Host,
		Path:   string(c.Request().URI().Path()),
	}
	if query := c.Request().URI().QueryString(); len(query) > 0 {
		upstream.RawQuery = string(query)
	}
	return upstream
}

func (f *Forwarder) buildUpstreamRequest(c fiber.Ctx, upstream *url.URL) (*http.Request, error) {
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader = http.NoBody
	if raw := c.Body(); len(raw) > 0 {
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, c.Method(), upstream.String(), body)
	if err != nil {
		return nil, err
	}

	CopyHeaders(req.Header, fiberHeadersAsHTTP(c))
	req.Host = upstream.Host
	req.Header.Set("Host", upstream.Host)
	req.Header.Set("X-Forwarded-Host", c.Hostname())
	if ip := c.IP(); ip != "" {
		if prior := req.Header.Get("X-Forwarded-For"); prior != "" {
			req.Header.Set("X-Forwarded-For", prior+", "+ip)
		} else {
			req.Header.Set("X-Forwarded-For", ip)
		}
	}
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	return req, nil
}

func (f *Forwarder) logResult(c fiber.Ctx, upstream, requestID string, status int, started time.Time, err error) {
	if f.logger == nil {
		return
	}
	fields := logging.ForwardFields(c.Method(), string(c.Request().URI().Path()), upstream, status)
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if requestID != "" {
		fields["request_id"] = requestID
	}
	if err != nil {
		fields["error"] = err.Error()
		f.logger.WithFields(fields).Error("forward_failed")
		return
	}
	f.logger.WithFields(fields).Info("forward_complete")
}

func fiberHeadersAsHTTP(c fiber.Ctx) http.Header {
	header := http.Header{}
	c.Request().Header.VisitAll(func(key, value []byte) {
		header.Add(string(key), string(value))
	})
	return header
}

func copyResponseHeaders(c fiber.Ctx, headers http.Header) {
	for key, values := range headers {
		if IsHopByHopHeader(key) {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
}

func writeError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}
