package binding

import (
	"context"

	"github.com/md-hub/md-hub/internal/docapi"
	"github.com/md-hub/md-hub/internal/querykey"
)

// Create 创建文档。成功后仅失效列表前缀：新文档在服务端的排序/分页
// 位置未知，下次读取由远端给出权威结果；Detail 条目不预填充。
func (b *Bindings) Create(ctx context.Context, data docapi.DocumentCreate) (*docapi.Document, error) {
	doc, err := b.client.CreateDocument(ctx, data)
	if err != nil {
		return nil, err
	}

	b.store.InvalidatePrefix(querykey.Lists())
	b.logMutation("create", doc.ID)
	return doc, nil
}

// Update 更新文档。成功后用服务端返回的表示直接覆盖 Detail 条目
//（省一次回源），并失效列表前缀（列表展示的派生字段需要刷新）。
func (b *Bindings) Update(ctx context.Context, id string, data docapi.DocumentUpdate) (*docapi.Document, error) {
	doc, err := b.client.UpdateDocument(ctx, id, data)
	if err != nil {
		return nil, err
	}

	b.store.Set(querykey.Detail(doc.ID), doc)
	b.store.InvalidatePrefix(querykey.Lists())
	b.logMutation("update", doc.ID)
	return doc, nil
}

// Delete 删除文档。成功后彻底移除 Detail 条目（资源已不存在，
// 不是“过期”），并失效列表前缀。
func (b *Bindings) Delete(ctx context.Context, id string) error {
	if err := b.client.DeleteDocument(ctx, id); err != nil {
		return err
	}

	b.store.Remove(querykey.Detail(id))
	b.store.InvalidatePrefix(querykey.Lists())
	b.logMutation("delete", id)
	return nil
}

// Duplicate 复制文档。新文档 ID 由服务端分配，调用前不可知，
// 因此只失效列表前缀。
func (b *Bindings) Duplicate(ctx context.Context, id string) (*docapi.Document, error) {
	doc, err := b.client.DuplicateDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	b.store.InvalidatePrefix(querykey.Lists())
	b.logMutation("duplicate", doc.ID)
	return doc, nil
}
