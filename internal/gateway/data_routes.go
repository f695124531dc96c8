package gateway

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/md-hub/md-hub/internal/binding"
	"github.com/md-hub/md-hub/internal/docapi"
)

// RegisterDataRoutes 暴露 /-/documents 诊断端点：与 /api/* 的直通转发
// 不同，这条路径经由绑定层读取，便于在本地核对缓存行为。
func RegisterDataRoutes(app *fiber.App, bindings *binding.Bindings) {
	if app == nil || bindings == nil {
		return
	}

	app.Get("/-/documents/:id", func(c fiber.Ctx) error {
		doc, err := bindings.Get(c.Context(), c.Params("id"))
		if err != nil {
			return renderBindingError(c, err)
		}
		return c.JSON(doc)
	})

	app.Get("/-/documents/:id/render", func(c fiber.Ctx) error {
		result, err := bindings.RenderDocument(c.Context(), c.Params("id"), c.Query("format"))
		if err != nil {
			return renderBindingError(c, err)
		}
		return c.JSON(result)
	})
}

func renderBindingError(c fiber.Ctx, err error) error {
	var apiErr *docapi.APIError
	switch {
	case errors.As(err, &apiErr):
		return c.Status(apiErr.Status).JSON(fiber.Map{"detail": apiErr.Detail})
	case errors.Is(err, binding.ErrBindingDisabled):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "document_id_required"})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream_failed"})
	}
}
