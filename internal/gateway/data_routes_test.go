package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/md-hub/md-hub/internal/binding"
	"github.com/md-hub/md-hub/internal/cache"
	"github.com/md-hub/md-hub/internal/config"
	"github.com/md-hub/md-hub/internal/docapi"
)

func TestDataRoutesReadThroughBindings(t *testing.T) {
	fetches := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(docapi.Document{ID: "doc-1", Title: "初稿"})
	}))
	defer upstream.Close()

	app := newDataRoutesApp(t, upstream.URL)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "http://localhost:5200/-/documents/doc-1", nil))
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		if !bytes.Contains(body, []byte(`"doc-1"`)) {
			t.Fatalf("request %d unexpected body: %s", i, string(body))
		}
	}

	// 第二次读取应命中缓存
	if fetches != 1 {
		t.Fatalf("expected single upstream fetch, got %d", fetches)
	}
}

func TestDataRoutesRenderNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Document not found"}`))
	}))
	defer upstream.Close()

	app := newDataRoutesApp(t, upstream.URL)

	resp, err := app.Test(httptest.NewRequest("GET", "http://localhost:5200/-/documents/missing/render", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 passthrough, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("Document not found")) {
		t.Fatalf("detail not surfaced: %s", string(body))
	}
}

func newDataRoutesApp(t *testing.T, upstreamURL string) *fiber.App {
	t.Helper()

	client, err := docapi.NewClient(upstreamURL, http.DefaultClient, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	bindings := binding.New(client, cache.NewStore(time.Minute), binding.StaleTTLs{
		List:   30 * time.Second,
		Detail: 30 * time.Second,
		Render: 60 * time.Second,
	}, nil)

	app := newTestApp(t, config.GlobalConfig{APIBaseURL: upstreamURL}).App
	RegisterDataRoutes(app, bindings)
	return app
}
