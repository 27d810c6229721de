package search

import (
	"context"
	"log/slog"
)

// Result is one found image with its provenance.
type Result struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	Thumbnail string `json:"thumbnail"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Query     string `json:"query,omitempty"`
	Engine    string `json:"search_engine,omitempty"`
}

// Supported engine identifiers.
const (
	EngineDuckDuckGo = "duckduckgo"
	EnginePixabay    = "pixabay"
	EnginePinterest  = "pinterest"
	EngineSearXNG    = "searxng"
)

// Engines lists the supported engine identifiers.
var Engines = []string{EngineDuckDuckGo, EnginePixabay, EnginePinterest, EngineSearXNG}

// Searcher dispatches image searches to the configured engines. The base
// URLs exist so tests can point engines at local servers.
type Searcher struct {
	Client *Client

	DuckDuckGoBase string
	PixabayBase    string
	SearXNGBase    string
	PinterestBase  string

	// Browser, when set, serves Pinterest searches through a headless
	// browser. Without it the HTTP fallback is used.
	Browser *PinterestBrowser

	// Region for engines that accept one; "auto" means no preference.
	Language string
}

// NewSearcher returns a Searcher against the real engine endpoints.
func NewSearcher() *Searcher {
	return &Searcher{
		Client:         NewClient(),
		DuckDuckGoBase: "https://duckduckgo.com",
		PixabayBase:    "https://pixabay.com/api/",
		SearXNGBase:    "http://localhost:8080",
		PinterestBase:  "https://www.pinterest.com",
		Language:       "auto",
	}
}

// Search runs one query against one engine. An unknown engine falls back
// to DuckDuckGo, the most stable of the four.
func (s *Searcher) Search(ctx context.Context, query string, maxResults int, engine string) ([]Result, error) {
	if maxResults < 1 {
		maxResults = 1
	}

	var (
		results []Result
		err     error
	)
	switch engine {
	case EnginePixabay:
		results, err = s.searchPixabay(ctx, query, maxResults)
	case EnginePinterest:
		results, err = s.searchPinterest(ctx, query, maxResults)
	case EngineSearXNG:
		results, err = s.searchSearXNG(ctx, query, maxResults)
	case EngineDuckDuckGo:
		results, err = s.searchDuckDuckGo(ctx, query, maxResults)
	default:
		slog.Warn("Unknown search engine, using duckduckgo", "engine", engine)
		engine = EngineDuckDuckGo
		results, err = s.searchDuckDuckGo(ctx, query, maxResults)
	}
	if err != nil {
		return nil, err
	}

	for i := range results {
		results[i].Query = query
		results[i].Engine = engine
	}
	return results, nil
}

// MultiSearch runs one query across several engines and merges the
// results. Engine failures are logged and skipped so one flaky engine
// does not sink the whole search.
func (s *Searcher) MultiSearch(ctx context.Context, query string, engines []string, countFor func(engine string) int) []Result {
	var all []Result
	for _, engine := range engines {
		count := countFor(engine)
		results, err := s.Search(ctx, query, count, engine)
		if err != nil {
			slog.Warn("Engine search failed", "engine", engine, "query", query, "error", err)
			continue
		}
		slog.Debug("Engine search done", "engine", engine, "query", query, "found", len(results))
		all = append(all, results...)
	}
	return all
}
