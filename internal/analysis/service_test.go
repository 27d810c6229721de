package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/llm"
)

type fakeProvider struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeProvider) Generate(_ context.Context, cfg llm.Config) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, cfg.Prompt)
	return f.response, f.err
}

// pixabayStub serves a fixed number of hits for any query.
func pixabayStub(t *testing.T, hits int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := `{"hits": [`
		for i := range hits {
			if i > 0 {
				body += ","
			}
			body += fmt.Sprintf(`{"webformatURL": "https://px.example/%d.jpg", "tags": "hit %d", "user": "u"}`, i, i)
		}
		body += `]}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testService(t *testing.T, settings config.Settings, provider llm.Provider, hits int) *Service {
	t.Helper()
	server := pixabayStub(t, hits)
	settings.SearchEngine = "pixabay"
	svc := NewService(settings, provider)
	svc.Searcher.PixabayBase = server.URL
	return svc
}

func TestAnalyze(t *testing.T) {
	settings := config.Default()
	settings.ImageCount = 4
	settings.URLParsing = false
	provider := &fakeProvider{response: "mountain sunrise\nalpine lake"}

	svc := testService(t, settings, provider, 5)
	session, err := svc.Analyze(context.Background(), "First paragraph here.\n\nSecond paragraph here.")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(session.Paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(session.Paragraphs))
	}
	if session.ID == "" {
		t.Error("expected session ID")
	}
	if provider.calls != 2 {
		t.Errorf("expected one LLM call per paragraph, got %d", provider.calls)
	}
	if provider.prompts[0] != "First paragraph here." {
		t.Errorf("unexpected prompt %q", provider.prompts[0])
	}

	first := session.Paragraphs[0]
	if len(first.Queries) != 2 {
		t.Errorf("expected 2 queries, got %v", first.Queries)
	}
	// 4 images per paragraph, spread 2+2 over its 2 queries.
	if len(first.Images) != 4 || len(session.Paragraphs[1].Images) != 4 {
		t.Errorf("expected 4 images per paragraph, got %d and %d",
			len(first.Images), len(session.Paragraphs[1].Images))
	}
	if session.ImageCount() != 8 {
		t.Errorf("expected 8 images total, got %d", session.ImageCount())
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	svc := testService(t, config.Default(), nil, 0)
	if _, err := svc.Analyze(context.Background(), "   \n\n  "); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestAnalyzeFallbackQueriesWithoutProvider(t *testing.T) {
	settings := config.Default()
	settings.ImageCount = 1
	settings.URLParsing = false

	svc := testService(t, settings, nil, 1)
	session, err := svc.Analyze(context.Background(), "The quick brown fox jumps over the lazy dog.")
	if err != nil {
		t.Fatal(err)
	}

	queries := session.Paragraphs[0].Queries
	if len(queries) != 1 || queries[0] != "The quick brown" {
		t.Errorf("expected fallback query from first words, got %v", queries)
	}
}

func TestAnalyzeFallbackOnProviderError(t *testing.T) {
	settings := config.Default()
	settings.ImageCount = 1
	settings.URLParsing = false
	provider := &fakeProvider{err: errors.New("connection refused")}

	svc := testService(t, settings, provider, 1)
	session, err := svc.Analyze(context.Background(), "Alpha beta gamma delta.")
	if err != nil {
		t.Fatal(err)
	}
	if got := session.Paragraphs[0].Queries; len(got) != 1 || got[0] != "Alpha beta gamma" {
		t.Errorf("expected fallback query, got %v", got)
	}
}

func TestAnalyzeSmartQueriesDisabled(t *testing.T) {
	off := false
	settings := config.Default()
	settings.ImageCount = 1
	settings.URLParsing = false
	settings.SmartQueries = &off
	provider := &fakeProvider{response: "should not be used"}

	svc := testService(t, settings, provider, 1)
	session, err := svc.Analyze(context.Background(), "One two three four.")
	if err != nil {
		t.Fatal(err)
	}
	if provider.calls != 0 {
		t.Errorf("expected no LLM calls, got %d", provider.calls)
	}
	if got := session.Paragraphs[0].Queries; got[0] != "One two three" {
		t.Errorf("expected fallback query, got %v", got)
	}
}

func TestAnalyzeQueryCountLimit(t *testing.T) {
	settings := config.Default()
	settings.ImageCount = 1
	settings.URLParsing = false
	settings.QueryCount = 2
	provider := &fakeProvider{response: "one query\ntwo query\nthree query\nfour query"}

	svc := testService(t, settings, provider, 1)
	session, err := svc.Analyze(context.Background(), "Some paragraph of text.")
	if err != nil {
		t.Fatal(err)
	}
	if got := session.Paragraphs[0].Queries; len(got) != 2 {
		t.Errorf("expected queries capped at 2, got %v", got)
	}
}

func TestAnalyzeSpreadsImagesAcrossQueries(t *testing.T) {
	settings := config.Default()
	settings.ImageCount = 4
	settings.URLParsing = false
	provider := &fakeProvider{response: "first query\nsecond query\nthird query"}

	svc := testService(t, settings, provider, 5)
	session, err := svc.Analyze(context.Background(), "One paragraph of text.")
	if err != nil {
		t.Fatal(err)
	}

	// 4 images over 3 queries: 2, 1, 1.
	images := session.Paragraphs[0].Images
	if len(images) != 4 {
		t.Fatalf("expected 4 images, got %d", len(images))
	}
	perQuery := map[string]int{}
	for _, img := range images {
		perQuery[img.Query]++
	}
	if perQuery["first query"] != 2 || perQuery["second query"] != 1 || perQuery["third query"] != 1 {
		t.Errorf("unexpected per-query distribution %v", perQuery)
	}
}

func TestAnalyzeSearchFailureKeepsParagraph(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	settings := config.Default()
	settings.SearchEngine = "pixabay"
	settings.ImageCount = 2
	settings.URLParsing = false

	svc := NewService(settings, nil)
	svc.Searcher.PixabayBase = server.URL

	session, err := svc.Analyze(context.Background(), "A paragraph that finds nothing.")
	if err != nil {
		t.Fatalf("Analyze should survive search failures: %v", err)
	}
	if len(session.Paragraphs) != 1 || len(session.Paragraphs[0].Images) != 0 {
		t.Errorf("expected paragraph kept with no images, got %+v", session.Paragraphs)
	}
}
