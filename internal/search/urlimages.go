package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var urlRe = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

// Per-text limits for link following.
const (
	maxURLsPerText  = 3
	minImageDimension = 100
)

// ExtractURLs returns the http(s) URLs embedded in the text, in order.
func ExtractURLs(text string) []string {
	return urlRe.FindAllString(text, -1)
}

// ParsePageImages fetches a web page and collects its usable <img> tags:
// lazy-loading attributes are honoured, relative URLs resolved, and images
// declared smaller than 100px in either dimension skipped as decoration.
func (s *Searcher) ParsePageImages(ctx context.Context, pageURL string, maxImages int) ([]Result, error) {
	resp, err := s.Client.Get(ctx, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", pageURL, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %s: %w", pageURL, err)
	}

	var results []Result
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src := firstAttr(sel, "src", "data-src", "data-lazy-src")
		if src == "" {
			return true
		}

		resolved := resolveImageURL(base, src)
		if resolved == "" {
			return true
		}

		width := parseDimension(sel.AttrOr("width", ""))
		height := parseDimension(sel.AttrOr("height", ""))
		if declaredTooSmall(width, height) {
			return true
		}

		title := sel.AttrOr("alt", "")
		if title == "" {
			title = sel.AttrOr("title", "")
		}

		results = append(results, Result{
			URL:       resolved,
			Title:     title,
			Source:    base.Host,
			Thumbnail: resolved,
			Width:     width,
			Height:    height,
		})
		return len(results) < maxImages
	})

	return results, nil
}

// ImagesFromText extracts URLs from the text and scrapes images from each
// linked page. At most three URLs are followed per text.
func (s *Searcher) ImagesFromText(ctx context.Context, text string, maxImagesPerURL int) []Result {
	urls := ExtractURLs(text)
	if len(urls) > maxURLsPerText {
		urls = urls[:maxURLsPerText]
	}

	var all []Result
	for _, pageURL := range urls {
		images, err := s.ParsePageImages(ctx, pageURL, maxImagesPerURL)
		if err != nil {
			slog.Warn("Failed to parse page images", "url", pageURL, "error", err)
			continue
		}
		slog.Debug("Parsed page images", "url", pageURL, "found", len(images))
		all = append(all, images...)
	}
	return all
}

func firstAttr(sel *goquery.Selection, names ...string) string {
	for _, name := range names {
		if v, ok := sel.Attr(name); ok && v != "" {
			return v
		}
	}
	return ""
}

func resolveImageURL(base *url.URL, src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func parseDimension(v string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil {
		return 0
	}
	return n
}

// declaredTooSmall only trusts explicit declarations; images without
// width/height attributes are kept.
func declaredTooSmall(width, height int) bool {
	if width == 0 || height == 0 {
		return false
	}
	return width < minImageDimension || height < minImageDimension
}
