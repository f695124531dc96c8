package docapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client 持有文档服务根地址与共享 http.Client。所有方法都接收
// context，并把远端失败原样抛给调用方，不做重试与本地恢复。
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *logrus.Logger
}

// ListOptions 描述列表查询参数，零值字段不出现在查询串中，
// 由远端补齐默认值（page=1、page_size=20、sort_by=updated_at 等）。
type ListOptions struct {
	Page      int
	PageSize  int
	Search    string
	SortBy    string
	SortOrder string
}

// NewClient 解析根地址并构建客户端。logger 可为 nil。
func NewClient(rawBaseURL string, httpClient *http.Client, logger *logrus.Logger) (*Client, error) {
	if strings.TrimSpace(rawBaseURL) == "" {
		return nil, errors.New("api base url required")
	}
	parsed, err := url.Parse(rawBaseURL)
	if err != nil {
		return nil, fmt.Errorf("解析 API 根地址失败: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: defaultTransport.Clone()}
	}
	return &Client{
		baseURL: parsed,
		http:    httpClient,
		logger:  logger,
	}, nil
}

// ListDocuments 拉取分页文档列表。
func (c *Client) ListDocuments(ctx context.Context, opts ListOptions) (*DocumentList, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.SortBy != "" {
		query.Set("sort_by", opts.SortBy)
	}
	if opts.SortOrder != "" {
		query.Set("sort_order", opts.SortOrder)
	}

	var list DocumentList
	if err := c.doJSON(ctx, http.MethodGet, "/documents", query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetDocument 拉取单个文档。
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateDocument 创建文档并返回服务端填充后的完整表示。
func (c *Client) CreateDocument(ctx context.Context, data DocumentCreate) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodPost, "/documents", nil, data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument 以 PATCH 提交部分更新。
func (c *Client) UpdateDocument(ctx context.Context, id string, data DocumentUpdate) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodPatch, "/documents/"+url.PathEscape(id), nil, data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument 删除文档，远端返回 204。
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil, nil)
}

// DuplicateDocument 复制文档，新文档 ID 由服务端分配。
func (c *Client) DuplicateDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodPost, "/documents/"+url.PathEscape(id)+"/duplicate", nil, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// RenderPreview 渲染未保存的草稿内容，format 为空时退回 html。
func (c *Client) RenderPreview(ctx context.Context, content, format string) (*RenderResult, error) {
	if format == "" {
		format = FormatHTML
	}
	payload := map[string]string{
		"content": content,
		"format":  format,
	}
	var result RenderResult
	if err := c.doJSON(ctx, http.MethodPost, "/render/preview", nil, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateSyntax 对任意内容做语法校验，不渲染。
func (c *Client) ValidateSyntax(ctx context.Context, content string) (*SyntaxReport, error) {
	payload := map[string]string{"content": content}
	var report SyntaxReport
	if err := c.doJSON(ctx, http.MethodPost, "/render/validate", nil, payload, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// RenderDocument 渲染已存储的文档。
func (c *Client) RenderDocument(ctx context.Context, id, format string) (*RenderResult, error) {
	if format == "" {
		format = FormatHTML
	}
	query := url.Values{"format": []string{format}}
	var result RenderResult
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+url.PathEscape(id)+"/render", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExportDocument 导出渲染产物。文件名优先取 Content-Disposition，
// 远端未给出时由标题和格式推导。
func (c *Client) ExportDocument(ctx context.Context, id, title, format string) (*ExportArtifact, error) {
	if format == "" {
		format = FormatHTML
	}
	query := url.Values{
		"format": []string{format},
		"title":  []string{title},
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/documents/"+url.PathEscape(id)+"/export", query, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取导出内容失败: %w", err)
	}

	return &ExportArtifact{
		Filename:    exportFilename(resp.Header.Get("Content-Disposition"), title, format),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// doJSON 统一执行请求并按状态码分流：2xx 解码进 out（可为 nil），
// 其它状态还原为 APIError。
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解码响应失败: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimSuffix(c.baseURL.Path, "/") + path})
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("编码请求体失败: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// exportFilename 解析 attachment; filename="..."，失败时回退 title.ext。
func exportFilename(disposition, title, format string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}

	ext := "html"
	switch format {
	case FormatMarkdown:
		ext = "md"
	case FormatJSON:
		ext = "json"
	}
	if title == "" {
		title = "document"
	}
	return title + "." + ext
}
