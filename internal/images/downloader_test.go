package images

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testDownloader(t *testing.T) *Downloader {
	t.Helper()
	root := t.TempDir()
	d := NewDownloader(root)
	return d
}

func imageBody() []byte {
	return bytes.Repeat([]byte("x"), 2000)
}

func TestDownloadAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/ok"):
			w.Write(imageBody())
		case r.URL.Path == "/tiny.png":
			w.Write([]byte("gif89a"))
		case r.URL.Path == "/missing.jpg":
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	d := testDownloader(t)
	urls := []string{
		server.URL + "/ok1.jpg",
		server.URL + "/tiny.png",
		server.URL + "/missing.jpg",
		server.URL + "/ok2.png",
	}

	paths := d.DownloadAll(context.Background(), urls)
	if len(paths) != 2 {
		t.Fatalf("expected 2 downloads, got %d: %v", len(paths), paths)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected file at %s: %v", path, err)
		}
		if info.Size() != 2000 {
			t.Errorf("expected 2000 bytes, got %d", info.Size())
		}
	}

	if !strings.HasSuffix(paths[0], ".jpg") {
		t.Errorf("expected .jpg extension, got %s", paths[0])
	}
	if !strings.HasSuffix(paths[1], ".png") {
		t.Errorf("expected .png extension, got %s", paths[1])
	}
}

func TestDownloadAllPreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBody())
	}))
	defer server.Close()

	d := testDownloader(t)
	paths := d.DownloadAll(context.Background(), []string{
		server.URL + "/a.jpg",
		server.URL + "/b.jpg",
		server.URL + "/c.jpg",
	})
	if len(paths) != 3 {
		t.Fatalf("expected 3 downloads, got %d", len(paths))
	}
	for i, path := range paths {
		want := "image_" + string(rune('1'+i)) + "_"
		if !strings.Contains(filepath.Base(path), want) {
			t.Errorf("path %d = %s, expected prefix %s", i, filepath.Base(path), want)
		}
	}
}

func TestDownloadRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(imageBody())
	}))
	defer server.Close()

	d := testDownloader(t)
	paths := d.DownloadAll(context.Background(), []string{server.URL + "/a.jpg"})
	if len(paths) != 1 {
		t.Fatalf("expected download to succeed after retries, got %v", paths)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestMarkUsed(t *testing.T) {
	d := testDownloader(t)
	if err := os.MkdirAll(d.SavedDir, 0755); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(d.SavedDir, "image_1_abc.jpg")
	if err := os.WriteFile(src, imageBody(), 0644); err != nil {
		t.Fatal(err)
	}

	dst, err := d.MarkUsed("image_1_abc.jpg")
	if err != nil {
		t.Fatalf("MarkUsed failed: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("expected moved file at %s: %v", dst, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("expected source removed, got %v", err)
	}
}

func TestMarkUsedMissing(t *testing.T) {
	d := testDownloader(t)
	if _, err := d.MarkUsed("nope.jpg"); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/photo.png", "png"},
		{"https://example.com/photo.JPEG", "jpeg"},
		{"https://example.com/photo.webp?w=800", "webp"},
		{"https://example.com/photo", "jpg"},
		{"https://example.com/script.php", "jpg"},
		{"https://example.com/a.gif#frag", "gif"},
	}
	for _, tt := range tests {
		if got := extensionFor(tt.url); got != tt.want {
			t.Errorf("extensionFor(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
