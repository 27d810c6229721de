package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
)

var vqdRe = regexp.MustCompile(`vqd=['"]?([\d-]+)`)

// searchDuckDuckGo queries the DuckDuckGo image endpoint. The endpoint
// requires a vqd token that is only handed out with the HTML search page,
// so every search is two requests.
func (s *Searcher) searchDuckDuckGo(ctx context.Context, query string, maxResults int) ([]Result, error) {
	vqd, err := s.duckDuckGoToken(ctx, query)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("l", s.region())
	params.Set("o", "json")
	params.Set("q", query)
	params.Set("vqd", vqd)
	params.Set("p", "1")

	resp, err := s.Client.Get(ctx, s.DuckDuckGoBase+"/i.js", params)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo image search failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Image     string `json:"image"`
			Title     string `json:"title"`
			URL       string `json:"url"`
			Thumbnail string `json:"thumbnail"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode duckduckgo response: %w", err)
	}

	results := make([]Result, 0, maxResults)
	for _, r := range payload.Results {
		if r.Image == "" {
			continue
		}
		results = append(results, Result{
			URL:       r.Image,
			Title:     r.Title,
			Source:    r.URL,
			Thumbnail: r.Thumbnail,
			Width:     r.Width,
			Height:    r.Height,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}

func (s *Searcher) duckDuckGoToken(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)

	resp, err := s.Client.Get(ctx, s.DuckDuckGoBase+"/", params)
	if err != nil {
		return "", fmt.Errorf("duckduckgo token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read duckduckgo page: %w", err)
	}

	m := vqdRe.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("no vqd token in duckduckgo page")
	}
	return string(m[1]), nil
}

func (s *Searcher) region() string {
	if s.Language == "" || s.Language == "auto" {
		return "wt-wt"
	}
	return s.Language
}
