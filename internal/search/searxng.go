package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

func (s *Searcher) searchSearXNG(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("categories", "images")
	params.Set("format", "json")
	params.Set("pageno", "1")

	base := strings.TrimRight(s.SearXNGBase, "/")
	resp, err := s.Client.Get(ctx, base+"/search", params)
	if err != nil {
		return nil, fmt.Errorf("searxng search failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			ImgSrc       string `json:"img_src"`
			Title        string `json:"title"`
			Engine       string `json:"engine"`
			ThumbnailSrc string `json:"thumbnail_src"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode searxng response: %w", err)
	}

	results := make([]Result, 0, maxResults)
	for _, item := range payload.Results {
		if item.ImgSrc == "" {
			continue
		}
		thumbnail := item.ThumbnailSrc
		if thumbnail == "" {
			thumbnail = item.ImgSrc
		}
		source := item.Engine
		if source == "" {
			source = "SearXNG"
		}
		results = append(results, Result{
			URL:       item.ImgSrc,
			Title:     item.Title,
			Source:    source,
			Thumbnail: thumbnail,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}
