package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/md-hub/md-hub/internal/config"
	"github.com/md-hub/md-hub/internal/version"
)

// Handler 描述 /api/* 的转发组件，便于测试时注入假实现。
type Handler interface {
	Handle(fiber.Ctx) error
}

// HandlerFunc 把函数适配为 Handler。
type HandlerFunc func(fiber.Ctx) error

// Handle 使 HandlerFunc 满足 Handler。
func (f HandlerFunc) Handle(c fiber.Ctx) error {
	return f(c)
}

// AppOptions 控制网关应用的构建。
type AppOptions struct {
	Logger     *logrus.Logger
	Forward    Handler
	Global     config.GlobalConfig
	ListenPort int
}

const contextKeyRequestID = "_mdhub_request_id"

// NewApp 构建 Fiber 应用：/api/* 交给转发器，/-/ 下是诊断与引导端点，
// 其余路径一律 404。
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Forward == nil {
		return nil, errors.New("forward handler is required")
	}
	if opts.ListenPort <= 0 {
		return nil, fmt.Errorf("invalid listen port: %d", opts.ListenPort)
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	registerDiagnostics(app, opts.Global)

	app.All("/api/*", func(c fiber.Ctx) error {
		return opts.Forward.Handle(c)
	})

	app.All("/*", func(c fiber.Ctx) error {
		// /-/ 下的路由可能在 NewApp 之后注册，放行给后续匹配
		if isDiagnosticsPath(string(c.Request().URI().Path())) {
			return c.Next()
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "path_unmapped",
		})
	})

	return app, nil
}

// registerDiagnostics 挂载 /-/ 端点。/-/config 把远端地址交给浏览器端
// 应用完成引导，WSBaseURL 未配置时字段留空。
func registerDiagnostics(app *fiber.App, global config.GlobalConfig) {
	app.Get("/-/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version.Version,
		})
	})

	app.Get("/-/config", func(c fiber.Ctx) error {
		payload := fiber.Map{
			"api_base_url": global.APIBaseURL,
		}
		if global.HasWSBaseURL() {
			payload["ws_base_url"] = global.WSBaseURL
		} else {
			payload["ws_base_url"] = ""
		}
		return c.JSON(payload)
	})
}

// requestIDMiddleware 为每个请求生成 ID，响应头与日志共用同一个值。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}

// RequestID 返回中间件写入的请求标识。
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
