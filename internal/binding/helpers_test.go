package binding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/md-hub/md-hub/internal/cache"
	"github.com/md-hub/md-hub/internal/docapi"
)

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// upstreamStub 模拟文档服务，按路由计数方便断言网络往返次数。
type upstreamStub struct {
	mu        sync.Mutex
	listCalls int
	getCalls  int
	renders   int
	exports   int
	previews  int
	validates int

	doc     docapi.Document
	deleted map[string]bool

	// gate/listGate 不为 nil 时，对应 GET 路由在取完当前状态后阻塞
	// 等待放行，用于并发去重与"回源途中发生变更"场景。
	// getStarted/listStarted 在阻塞前收到信号，便于测试对齐时序。
	gate        chan struct{}
	getStarted  chan struct{}
	listGate    chan struct{}
	listStarted chan struct{}
}

func newUpstreamStub() *upstreamStub {
	return &upstreamStub{
		doc: docapi.Document{
			ID:           "doc-1",
			Title:        "初稿",
			Content:      "# hello",
			RenderFormat: docapi.FormatHTML,
		},
		deleted: map[string]bool{},
	}
}

func (s *upstreamStub) signal(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *upstreamStub) counts() (list, get, render int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, s.getCalls, s.renders
}

func (s *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case r.Method == http.MethodGet && path == "/documents":
		s.mu.Lock()
		s.listCalls++
		list := docapi.DocumentList{
			Documents: []docapi.Document{s.doc},
			Total:     1,
			Page:      1,
			PageSize:  20,
		}
		s.mu.Unlock()
		s.signal(s.listStarted)
		if s.listGate != nil {
			<-s.listGate
		}
		writeJSON(w, http.StatusOK, list)

	case r.Method == http.MethodPost && path == "/documents":
		var data docapi.DocumentCreate
		_ = json.NewDecoder(r.Body).Decode(&data)
		writeJSON(w, http.StatusCreated, docapi.Document{
			ID:      "doc-new",
			Title:   data.Title,
			Content: data.Content,
		})

	case r.Method == http.MethodPost && path == "/render/preview":
		s.mu.Lock()
		s.previews++
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, docapi.RenderResult{Rendered: "<h1>preview</h1>"})

	case r.Method == http.MethodPost && path == "/render/validate":
		s.mu.Lock()
		s.validates++
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, docapi.SyntaxReport{Valid: true})

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/render"):
		s.mu.Lock()
		s.renders++
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, docapi.RenderResult{Rendered: "<h1>hello</h1>"})

	case r.Method == http.MethodGet && strings.HasSuffix(path, "/export"):
		s.mu.Lock()
		s.exports++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Disposition", `attachment; filename="export.html"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<h1>hello</h1>"))

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/duplicate"):
		writeJSON(w, http.StatusCreated, docapi.Document{ID: "doc-copy", Title: "初稿 (副本)"})

	case r.Method == http.MethodGet:
		// 状态在阻塞前取好，放行后响应的是阻塞那一刻的内容
		id := strings.TrimPrefix(path, "/documents/")
		s.mu.Lock()
		s.getCalls++
		deleted := s.deleted[id]
		doc := s.doc
		s.mu.Unlock()
		s.signal(s.getStarted)
		if s.gate != nil {
			<-s.gate
		}
		if deleted || id != doc.ID {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Document not found"})
			return
		}
		writeJSON(w, http.StatusOK, doc)

	case r.Method == http.MethodPatch:
		var data docapi.DocumentUpdate
		_ = json.NewDecoder(r.Body).Decode(&data)
		id := strings.TrimPrefix(path, "/documents/")
		s.mu.Lock()
		if id != s.doc.ID || s.deleted[id] {
			s.mu.Unlock()
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Document not found"})
			return
		}
		if data.Title != nil {
			s.doc.Title = *data.Title
		}
		if data.Content != nil {
			s.doc.Content = *data.Content
		}
		doc := s.doc
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, doc)

	case r.Method == http.MethodDelete:
		id := strings.TrimPrefix(path, "/documents/")
		s.mu.Lock()
		s.deleted[id] = true
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type harness struct {
	bindings *Bindings
	store    *cache.Store
	clock    *fakeClock
	upstream *upstreamStub
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	upstream := newUpstreamStub()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client, err := docapi.NewClient(server.URL, server.Client(), nil)
	if err != nil {
		t.Fatalf("构建客户端失败: %v", err)
	}

	store := cache.NewStoreWithClock(time.Minute, clock.now)
	bindings := New(client, store, StaleTTLs{
		List:   30 * time.Second,
		Detail: 30 * time.Second,
		Render: 60 * time.Second,
	}, nil)
	bindings.now = clock.now

	return &harness{
		bindings: bindings,
		store:    store,
		clock:    clock,
		upstream: upstream,
	}
}
