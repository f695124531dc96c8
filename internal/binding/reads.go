package binding

import (
	"context"
	"fmt"
	"strings"

	"github.com/md-hub/md-hub/internal/docapi"
	"github.com/md-hub/md-hub/internal/querykey"
)

// List 读取分页文档列表，键为 List(params)，窗口为列表档。
// 语义相同的 params 命中同一缓存条目。
func (b *Bindings) List(ctx context.Context, params querykey.ListParams, opts ...ReadOption) (*docapi.DocumentList, error) {
	resolved := applyReadOptions(opts)
	return fetchCached(ctx, b, "list", querykey.List(params), b.ttl.List, resolved.skipCache, func() (*docapi.DocumentList, error) {
		return b.client.ListDocuments(ctx, listOptions(params))
	})
}

// Get 读取单个文档，键为 Detail(id)，窗口为详情档。空 ID 直接禁用。
func (b *Bindings) Get(ctx context.Context, id string, opts ...ReadOption) (*docapi.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrBindingDisabled
	}
	resolved := applyReadOptions(opts)
	return fetchCached(ctx, b, "get", querykey.Detail(id), b.ttl.Detail, resolved.skipCache, func() (*docapi.Document, error) {
		return b.client.GetDocument(ctx, id)
	})
}

// RenderDocument 读取已存储文档的渲染结果，键为 Render(id, format)，
// 窗口为渲染档（更长：源内容不变时输出不变）。
func (b *Bindings) RenderDocument(ctx context.Context, id, format string, opts ...ReadOption) (*docapi.RenderResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrBindingDisabled
	}
	format, err := normalizeRenderFormat(format)
	if err != nil {
		return nil, err
	}
	resolved := applyReadOptions(opts)
	return fetchCached(ctx, b, "render_document", querykey.Render(id, format), b.ttl.Render, resolved.skipCache, func() (*docapi.RenderResult, error) {
		return b.client.RenderDocument(ctx, id, format)
	})
}

// listOptions 将缓存键参数映射到远端查询参数，两者字段一一对应，
// 保证键与实际请求始终一致。
func listOptions(params querykey.ListParams) docapi.ListOptions {
	return docapi.ListOptions{
		Page:      params.Page,
		PageSize:  params.PageSize,
		Search:    params.Search,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	}
}

func normalizeRenderFormat(format string) (string, error) {
	switch format {
	case "":
		return docapi.FormatHTML, nil
	case docapi.FormatHTML, docapi.FormatMarkdown:
		return format, nil
	default:
		return "", fmt.Errorf("不支持的渲染格式: %s", format)
	}
}
