package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Shared public API key, same one the Pixabay docs hand out.
const pixabayKey = "9656065-a4094594c34f9ac14c7fc4c39"

func (s *Searcher) searchPixabay(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{}
	params.Set("key", pixabayKey)
	params.Set("q", query)
	params.Set("image_type", "photo")
	params.Set("per_page", strconv.Itoa(max(maxResults, 3))) // API minimum is 3
	params.Set("safesearch", "true")

	resp, err := s.Client.Get(ctx, s.PixabayBase, params)
	if err != nil {
		return nil, fmt.Errorf("pixabay search failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Hits []struct {
			WebformatURL    string `json:"webformatURL"`
			PreviewURL      string `json:"previewURL"`
			Tags            string `json:"tags"`
			WebformatWidth  int    `json:"webformatWidth"`
			WebformatHeight int    `json:"webformatHeight"`
			User            string `json:"user"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode pixabay response: %w", err)
	}

	results := make([]Result, 0, maxResults)
	for _, hit := range payload.Hits {
		if hit.WebformatURL == "" {
			continue
		}
		results = append(results, Result{
			URL:       hit.WebformatURL,
			Title:     hit.Tags,
			Source:    "Pixabay",
			Thumbnail: hit.PreviewURL,
			Width:     hit.WebformatWidth,
			Height:    hit.WebformatHeight,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
