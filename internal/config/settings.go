package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Well-known file and directory names shared by the installer and the
// application. All paths are relative to the working directory.
const (
	SettingsFile      = "settings.json"
	CustomPromptsFile = "custom_prompts.json"
	HistoryFile       = "history.json"
	RequirementsFile  = "requirements.txt"

	SavedImagesDir = "saved_images"
	UsedImagesDir  = "used_in_davinci"
	CacheDir       = "cache"
	TemplatesDir   = "templates"
)

// DefaultSystemPrompt instructs the LLM to answer with bare search queries.
const DefaultSystemPrompt = "Create short search queries (3 words max each) " +
	"for finding images matching the text. One query per line. " +
	"Respond ONLY with keywords, no explanations."

// Settings holds the user-configurable application settings stored in
// settings.json. The first eight fields are the documented keys the
// installer writes; the remaining fields are extended keys the application
// reads when present and persists once the user saves settings.
type Settings struct {
	LLMURL         string `json:"llm_url"`
	LLMModel       string `json:"llm_model"`
	QueryCount     int    `json:"query_count"`
	ImageCount     int    `json:"image_count"`
	SearchEngine   string `json:"search_engine"`
	SearchLanguage string `json:"search_language"`
	URLParsing     bool   `json:"url_parsing"`
	SystemPrompt   string `json:"system_prompt"`

	SearXNGURL          string `json:"searxng_url,omitempty"`
	SmartQueries        *bool  `json:"smart_queries,omitempty"`
	SplitLongParagraphs bool   `json:"split_long_paragraphs,omitempty"`
	DuckDuckGoCount     int    `json:"duckduckgo_count,omitempty"`
	PixabayCount        int    `json:"pixabay_count,omitempty"`
	PinterestCount      int    `json:"pinterest_count,omitempty"`
}

// Default returns the settings the installer ships and the application
// falls back to when settings.json is absent or partial.
func Default() Settings {
	return Settings{
		LLMURL:         "http://localhost:1234/v1/chat/completions",
		LLMModel:       "local-llm",
		QueryCount:     3,
		ImageCount:     4,
		SearchEngine:   "duckduckgo",
		SearchLanguage: "auto",
		URLParsing:     true,
		SystemPrompt:   DefaultSystemPrompt,
	}
}

// SmartQueriesEnabled reports whether LLM query generation is on. It
// defaults to true when the key is absent from the document.
func (s Settings) SmartQueriesEnabled() bool {
	if s.SmartQueries == nil {
		return true
	}
	return *s.SmartQueries
}

// EngineCount returns the configured per-engine image count, falling back
// to the given default when the engine has no individual setting.
func (s Settings) EngineCount(engine string, fallback int) int {
	var n int
	switch engine {
	case "duckduckgo":
		n = s.DuckDuckGoCount
	case "pixabay":
		n = s.PixabayCount
	case "pinterest":
		n = s.PinterestCount
	}
	if n < 1 {
		return fallback
	}
	return n
}

// defaultDocument is the exact settings document the installer emits:
// the eight documented keys, nothing else.
type defaultDocument struct {
	LLMURL         string `json:"llm_url"`
	LLMModel       string `json:"llm_model"`
	QueryCount     int    `json:"query_count"`
	ImageCount     int    `json:"image_count"`
	SearchEngine   string `json:"search_engine"`
	SearchLanguage string `json:"search_language"`
	URLParsing     bool   `json:"url_parsing"`
	SystemPrompt   string `json:"system_prompt"`
}

// DefaultSettingsJSON renders the default settings document the installer
// writes. The output is deterministic, so repeated installs are byte-stable.
func DefaultSettingsJSON() []byte {
	d := Default()
	doc := defaultDocument{
		LLMURL:         d.LLMURL,
		LLMModel:       d.LLMModel,
		QueryCount:     d.QueryCount,
		ImageCount:     d.ImageCount,
		SearchEngine:   d.SearchEngine,
		SearchLanguage: d.SearchLanguage,
		URLParsing:     d.URLParsing,
		SystemPrompt:   d.SystemPrompt,
	}
	// Marshalling a fixed struct cannot fail.
	data, _ := json.MarshalIndent(doc, "", "  ")
	return append(data, '\n')
}

// LoadSettings reads settings.json from path, applying defaults for any
// missing keys. A missing file yields the defaults without error.
func LoadSettings(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}

	// Unmarshalling over the defaults keeps them for absent keys.
	if err := json.Unmarshal(data, &settings); err != nil {
		return Default(), fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

// SaveSettings writes the full settings document to path.
func SaveSettings(path string, settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	slog.Debug("Saved settings", "path", path)
	return nil
}
