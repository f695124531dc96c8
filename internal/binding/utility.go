package binding

import (
	"context"
	"fmt"
	"strings"

	"github.com/md-hub/md-hub/internal/docapi"
)

// Preview 渲染尚未保存的草稿内容。结果与任何文档状态无关，
// 不进缓存，也不参与失效。
func (b *Bindings) Preview(ctx context.Context, content, format string) (*docapi.RenderResult, error) {
	format, err := normalizeRenderFormat(format)
	if err != nil {
		return nil, err
	}
	return b.client.RenderPreview(ctx, content, format)
}

// Validate 对任意内容做语法校验，纯透传。
func (b *Bindings) Validate(ctx context.Context, content string) (*docapi.SyntaxReport, error) {
	return b.client.ValidateSyntax(ctx, content)
}

// Export 导出文档渲染产物。导出是一次性动作，产物直接交给调用方
// 落盘，不进缓存。
func (b *Bindings) Export(ctx context.Context, id, title, format string) (*docapi.ExportArtifact, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrBindingDisabled
	}
	format, err := normalizeExportFormat(format)
	if err != nil {
		return nil, err
	}
	return b.client.ExportDocument(ctx, id, title, format)
}

// normalizeExportFormat 较渲染格式多一档 json（导出元数据快照）。
func normalizeExportFormat(format string) (string, error) {
	switch format {
	case "":
		return docapi.FormatHTML, nil
	case docapi.FormatHTML, docapi.FormatMarkdown, docapi.FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("不支持的导出格式: %s", format)
	}
}
