package docapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError 还原远端的 {"detail": ...} 错误信封，状态码保留原样，
// 供上层按错误类别（未找到/校验失败/服务端错误）渲染。
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("document service: status=%d detail=%s", e.Status, e.Detail)
}

// IsNotFound 表示目标资源不存在。
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsValidation 表示远端拒绝了请求内容（语法/字段校验失败）。
func (e *APIError) IsValidation() bool {
	return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
}

// IsNotFound 报告 err 是否为远端 404。
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

// IsValidation 报告 err 是否为远端校验失败。
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsValidation()
}

// decodeAPIError 从响应体提取 detail 字段；解析失败时退化为原始正文摘要。
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			detail = text
		} else {
			detail = string(envelope.Detail)
		}
	}

	return &APIError{
		Status: resp.StatusCode,
		Detail: detail,
	}
}
