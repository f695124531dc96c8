// Package querykey 定义文档数据层的缓存键注册表：以有序的段元组描述
// “全部文档 → 列表 → 带参数列表 → 详情 → 按 ID 详情” 的层级关系。
// 所有构造函数均为纯函数，语义相同的输入必须产出完全一致的键，
// 以便缓存层通过前缀匹配一次性失效某个范围下的所有子键。
package querykey

import (
	"fmt"
	"strings"
)

// Key 是有序的段元组，仅通过逐段相等判定键相等。
type Key []string

const (
	scopeDocuments = "documents"
	scopeList      = "list"
	scopeDetail    = "detail"
	scopeRender    = "render"
)

// ListParams 对应远端列表查询的过滤/分页描述。字段顺序即规范化顺序，
// 因此两个字段逐项相等的 ListParams 必然产出同一个键。
type ListParams struct {
	Page      int    `json:"page,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	Search    string `json:"search,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

// IsZero 表示调用方未提供任何过滤条件。
func (p ListParams) IsZero() bool {
	return p == ListParams{}
}

// canonical 将参数编码为确定性的单段字符串。空参数使用固定占位段，
// 保证 List(零值) 依然是 Lists() 的真前缀扩展。
func (p ListParams) canonical() string {
	if p.IsZero() {
		return "{}"
	}
	parts := make([]string, 0, 5)
	if p.Page != 0 {
		parts = append(parts, fmt.Sprintf("page=%d", p.Page))
	}
	if p.PageSize != 0 {
		parts = append(parts, fmt.Sprintf("page_size=%d", p.PageSize))
	}
	if p.Search != "" {
		parts = append(parts, "search="+p.Search)
	}
	if p.SortBy != "" {
		parts = append(parts, "sort_by="+p.SortBy)
	}
	if p.SortOrder != "" {
		parts = append(parts, "sort_order="+p.SortOrder)
	}
	return "{" + strings.Join(parts, "&") + "}"
}

// All 覆盖文档实体的全部缓存键。
func All() Key {
	return Key{scopeDocuments}
}

// Lists 覆盖所有列表查询，无论参数为何。
func Lists() Key {
	return Key{scopeDocuments, scopeList}
}

// List 返回特定参数组合的列表键，是 Lists 的前缀扩展。
func List(params ListParams) Key {
	return Key{scopeDocuments, scopeList, params.canonical()}
}

// Details 覆盖所有详情查询。
func Details() Key {
	return Key{scopeDocuments, scopeDetail}
}

// Detail 返回单个文档的详情键，是 Details 的前缀扩展。
func Detail(id string) Key {
	return Key{scopeDocuments, scopeDetail, id}
}

// Render 返回已存储文档渲染结果的键。渲染键独立于 documents 层级，
// 其生命周期由渲染绑定单独管理。
func Render(id, format string) Key {
	return Key{scopeRender, id, format}
}

// String 以 "::" 连接各段，作为缓存层与在途请求表使用的扁平键。
// 段内的 ":" 会被转义，含分隔符的 ID 或搜索串不会挪动段边界。
func (k Key) String() string {
	escaped := make([]string, len(k))
	for i, segment := range k {
		escaped[i] = escapeSegment(segment)
	}
	return strings.Join(escaped, "::")
}

// Parse 将 String 产出的扁平键还原为段元组，供缓存层做前缀比较。
func Parse(flat string) Key {
	if flat == "" {
		return nil
	}
	segments := strings.Split(flat, "::")
	key := make(Key, len(segments))
	for i, segment := range segments {
		key[i] = unescapeSegment(segment)
	}
	return key
}

func escapeSegment(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	return strings.ReplaceAll(s, ":", "%3A")
}

func unescapeSegment(s string) string {
	s = strings.ReplaceAll(s, "%3A", ":")
	return strings.ReplaceAll(s, "%25", "%")
}

// HasPrefix 判断 k 是否以 prefix 的全部段开头。任意键都是自身的前缀。
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, segment := range prefix {
		if k[i] != segment {
			return false
		}
	}
	return true
}

// Equal 逐段比较两个键。
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}
