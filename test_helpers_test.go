package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(file, []byte(strings.TrimSpace(content)), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return file
}

func validConfigFile(t *testing.T) string {
	t.Helper()
	return writeConfigFile(t, `
ListenPort = 5200
APIBaseURL = "http://127.0.0.1:8000"
`)
}
