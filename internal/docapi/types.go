package docapi

import "time"

// 渲染/导出格式常量。远端仅接受这些取值，默认均为 html。
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Document 是远端返回的文档表示，本层仅透传，不做本地校验。
type Document struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	RenderFormat   string    `json:"render_format"`
	OwnerID        string    `json:"owner_id"`
	IsDeleted      bool      `json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// DocumentCreate 是创建请求载荷。
type DocumentCreate struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	RenderFormat string `json:"render_format,omitempty"`
}

// DocumentUpdate 是部分更新载荷，nil 字段不出现在请求体中。
type DocumentUpdate struct {
	Title        *string `json:"title,omitempty"`
	Content      *string `json:"content,omitempty"`
	RenderFormat *string `json:"render_format,omitempty"`
}

// DocumentList 是分页列表响应。
type DocumentList struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
	HasMore   bool       `json:"has_more"`
}

// RenderResult 携带渲染输出与远端缓存命中标记。
type RenderResult struct {
	Rendered string `json:"rendered"`
	Cached   bool   `json:"cached"`
}

// SyntaxIssue 是远端语法校验返回的单条诊断。
type SyntaxIssue struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// SyntaxReport 汇总语法校验结果。
type SyntaxReport struct {
	Valid  bool          `json:"valid"`
	Errors []SyntaxIssue `json:"errors"`
}

// ExportArtifact 是导出调用的产物：文件名来自 Content-Disposition，
// 缺失时由调用方给定的标题推导。
type ExportArtifact struct {
	Filename    string
	ContentType string
	Data        []byte
}
