package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"no urls", "just some text about mountains", 0},
		{"one url", "see https://example.com/page for more", 1},
		{"two urls", "http://a.example/x and https://b.example/y.", 2},
		{"url with query", "https://example.com/p?q=1&r=2 trailing", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractURLs(tt.text); len(got) != tt.want {
				t.Errorf("got %v, want %d urls", got, tt.want)
			}
		})
	}
}

func TestParsePageImages(t *testing.T) {
	page := `<html><body>
		<img src="/images/hero.jpg" alt="Hero" width="800" height="600">
		<img data-src="https://cdn.example/lazy.jpg" alt="Lazy">
		<img src="//cdn.example/protocol-relative.jpg">
		<img src="/icons/tiny.png" width="16" height="16">
		<img alt="no source at all">
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(page)); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	s := NewSearcher()
	s.Client.BaseDelay = time.Millisecond

	results, err := s.ParsePageImages(context.Background(), server.URL+"/article", 10)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 images (tiny and sourceless skipped), got %d: %+v", len(results), results)
	}

	if results[0].URL != server.URL+"/images/hero.jpg" {
		t.Errorf("relative URL not resolved: %q", results[0].URL)
	}
	if results[0].Width != 800 || results[0].Height != 600 {
		t.Errorf("dimensions not parsed: %+v", results[0])
	}
	if results[1].URL != "https://cdn.example/lazy.jpg" {
		t.Errorf("data-src not honoured: %q", results[1].URL)
	}
	if results[2].URL != "https://cdn.example/protocol-relative.jpg" {
		t.Errorf("protocol-relative URL not resolved: %q", results[2].URL)
	}
}

func TestParsePageImages_RespectsLimit(t *testing.T) {
	page := `<html><body>
		<img src="/a.jpg"><img src="/b.jpg"><img src="/c.jpg">
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(page)); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	s := NewSearcher()
	s.Client.BaseDelay = time.Millisecond

	results, err := s.ParsePageImages(context.Background(), server.URL, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("expected limit of 2, got %d", len(results))
	}
}

func TestImagesFromText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`<html><body><img src="/pic.jpg"></body></html>`)); err != nil {
			t.Fatal(err)
		}
	}))
	defer server.Close()

	s := NewSearcher()
	s.Client.BaseDelay = time.Millisecond

	text := "An article at " + server.URL + "/post explains it."
	results := s.ImagesFromText(context.Background(), text, 2)
	if len(results) != 1 {
		t.Fatalf("expected 1 image, got %d", len(results))
	}
}

func TestImagesFromText_NoURLs(t *testing.T) {
	s := NewSearcher()
	if results := s.ImagesFromText(context.Background(), "plain text", 2); len(results) != 0 {
		t.Errorf("expected no results, got %+v", results)
	}
}
