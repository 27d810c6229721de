// Package analysis runs text through the paragraph pipeline: split,
// generate search queries, and collect candidate images per paragraph.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/llm"
	"github.com/textlens/textlens/internal/models"
	"github.com/textlens/textlens/internal/search"
)

// Service wires the language model and the image search engines into
// the per-paragraph analysis pipeline.
type Service struct {
	Settings config.Settings
	Provider llm.Provider
	Searcher *search.Searcher
}

// NewService builds a Service from loaded settings. The provider may be
// nil, in which case queries fall back to the paragraph's leading words.
func NewService(settings config.Settings, provider llm.Provider) *Service {
	searcher := search.NewSearcher()
	searcher.Language = settings.SearchLanguage
	if settings.SearXNGURL != "" {
		searcher.SearXNGBase = settings.SearXNGURL
	}
	return &Service{
		Settings: settings,
		Provider: provider,
		Searcher: searcher,
	}
}

// maxImagesPerURL caps how many images are scraped from each URL found
// inside a paragraph.
const maxImagesPerURL = 2

// Analyze splits text into paragraphs and finds images for each one. The
// configured image count applies per paragraph and is spread across its
// queries; a paragraph whose search fails is kept in the session with no
// images.
func (s *Service) Analyze(ctx context.Context, text string) (*models.AnalysisSession, error) {
	paragraphs := SplitParagraphs(text, s.Settings.SplitLongParagraphs)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("no paragraphs found in text")
	}

	started := time.Now()
	session := &models.AnalysisSession{
		ID:        uuid.NewString(),
		Text:      text,
		Model:     s.Settings.LLMModel,
		Engines:   s.engines(),
		CreatedAt: started,
	}

	for i, paragraph := range paragraphs {
		result := models.ParagraphResult{
			Index: i,
			Text:  paragraph,
		}
		result.Queries = s.queriesFor(ctx, paragraph)
		result.Images = s.imagesFor(ctx, result.Queries, s.Settings.ImageCount)

		if s.Settings.URLParsing {
			result.Images = append(result.Images, s.Searcher.ImagesFromText(ctx, paragraph, maxImagesPerURL)...)
		}
		session.Paragraphs = append(session.Paragraphs, result)
	}

	session.DurationMS = time.Since(started).Milliseconds()
	return session, nil
}

// queriesFor asks the language model for search queries, trimming the list
// to the configured count. Any failure falls back to the paragraph's first
// words so the pipeline keeps moving.
func (s *Service) queriesFor(ctx context.Context, paragraph string) []string {
	if s.Provider == nil || !s.Settings.SmartQueriesEnabled() {
		return []string{FallbackQuery(paragraph)}
	}

	response, err := s.Provider.Generate(ctx, llm.Config{
		Model:       s.Settings.LLMModel,
		Temperature: 0.7,
		System:      s.Settings.SystemPrompt,
		Prompt:      paragraph,
	})
	if err != nil {
		slog.Warn("Query generation failed, using fallback", "error", err)
		return []string{FallbackQuery(paragraph)}
	}

	queries := llm.ParseQueries(llm.CleanResponse(response))
	if len(queries) == 0 {
		return []string{FallbackQuery(paragraph)}
	}
	if limit := s.Settings.QueryCount; limit > 0 && len(queries) > limit {
		queries = queries[:limit]
	}
	return queries
}

// imagesFor spreads the paragraph's image quota across its queries, floor
// share first and the remainder to the leading queries, then runs each
// query against the configured engines.
func (s *Service) imagesFor(ctx context.Context, queries []string, want int) []search.Result {
	if want <= 0 || len(queries) == 0 {
		return nil
	}

	engines := s.engines()
	counts := DistributeImages(want, len(queries))

	var images []search.Result
	for i, query := range queries {
		if counts[i] == 0 {
			continue
		}
		if len(engines) == 1 {
			found, err := s.Searcher.Search(ctx, query, counts[i], engines[0])
			if err != nil {
				slog.Warn("Image search failed", "engine", engines[0], "query", query, "error", err)
				continue
			}
			images = append(images, found...)
			continue
		}
		images = append(images, s.Searcher.MultiSearch(ctx, query, engines, func(engine string) int {
			return s.Settings.EngineCount(engine, counts[i])
		})...)
	}
	return images
}

// engines resolves the search_engine setting into a list of engines. The
// value "all" fans out to every supported engine.
func (s *Service) engines() []string {
	if s.Settings.SearchEngine == "all" {
		return search.Engines
	}
	return []string{s.Settings.SearchEngine}
}
