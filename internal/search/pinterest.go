package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// PinterestBrowser scrapes the Pinterest pin grid with a headless browser.
// Pinterest renders everything client-side, so plain HTTP only sees an
// empty shell; the browser path is the one that actually works.
type PinterestBrowser struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewPinterestBrowser launches a headless Chrome and connects to it.
func NewPinterestBrowser() (*PinterestBrowser, error) {
	lnch := launcher.New().Headless(true).NoSandbox(true)
	controlURL, err := lnch.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		lnch.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &PinterestBrowser{browser: browser, lnch: lnch}, nil
}

// Close shuts the browser down.
func (b *PinterestBrowser) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
	}
}

// Search loads the pin search page, scrolls to force lazy content in, and
// collects the pin images, upgrading thumbnail URLs to the originals size.
func (b *PinterestBrowser) Search(ctx context.Context, base, query string, maxResults int) ([]Result, error) {
	searchURL := fmt.Sprintf("%s/search/pins/?q=%s&rs=typed", strings.TrimRight(base, "/"), url.QueryEscape(query))

	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx).Timeout(30 * time.Second)

	if err := page.Navigate(searchURL); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", searchURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		slog.Warn("Pinterest page load timed out, parsing anyway", "error", err)
	}

	// Scroll the infinite grid a few times to load more pins.
	for i := 0; i < 7; i++ {
		if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			break
		}
		time.Sleep(time.Second)
	}

	pins, err := page.Elements(`div[data-test-id="pin"]`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pins: %w", err)
	}
	slog.Debug("Found pin containers", "count", len(pins))

	seen := map[string]bool{}
	var results []Result
	for _, pin := range pins {
		if len(results) >= maxResults {
			break
		}

		img, err := pin.Element(`div[data-test-id="pinrep-image"] img`)
		if err != nil {
			img, err = pin.Element(`img[src*="/236x/"], img[src*="/474x/"], img[src*="/564x/"]`)
		}
		if err != nil {
			// Video pins only carry a poster frame.
			if video, verr := pin.Element(`video[poster]`); verr == nil {
				if poster, perr := video.Attribute("poster"); perr == nil && poster != nil && !seen[*poster] {
					seen[*poster] = true
					results = append(results, Result{
						URL:       *poster,
						Title:     "Pinterest video poster for " + query,
						Source:    "Pinterest",
						Thumbnail: *poster,
					})
				}
			}
			continue
		}

		src, err := img.Attribute("src")
		if err != nil || src == nil || *src == "" {
			continue
		}

		full := pinterestOriginalURL(*src, attributeOrEmpty(img, "srcset"))
		if seen[full] {
			continue
		}
		seen[full] = true

		title := attributeOrEmpty(img, "alt")
		if title == "" {
			title = "Pinterest image for " + query
		}

		results = append(results, Result{
			URL:       full,
			Title:     title,
			Source:    "Pinterest",
			Thumbnail: *src,
		})
	}

	return results, nil
}

func attributeOrEmpty(el *rod.Element, name string) string {
	v, err := el.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

// pinterestOriginalURL upgrades a thumbnail URL to the full-size image,
// preferring an originals entry from srcset when present.
func pinterestOriginalURL(src, srcset string) string {
	if strings.Contains(srcset, "originals") {
		for _, item := range strings.Split(srcset, ",") {
			item = strings.TrimSpace(item)
			if strings.Contains(item, "originals") {
				if fields := strings.Fields(item); len(fields) > 0 {
					return fields[0]
				}
			}
		}
	}
	for _, size := range []string{"/236x/", "/474x/", "/564x/"} {
		if strings.Contains(src, size) {
			return strings.Replace(src, size, "/originals/", 1)
		}
	}
	return src
}

// searchPinterest prefers the headless browser and falls back to scraping
// whatever images the static HTML carries.
func (s *Searcher) searchPinterest(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if s.Browser != nil {
		results, err := s.Browser.Search(ctx, s.PinterestBase, query, maxResults)
		if err == nil {
			return results, nil
		}
		slog.Warn("Pinterest browser search failed, using HTTP fallback", "error", err)
	}
	return s.searchPinterestHTTP(ctx, query, maxResults)
}

func (s *Searcher) searchPinterestHTTP(ctx context.Context, query string, maxResults int) ([]Result, error) {
	searchURL := fmt.Sprintf("%s/search/pins/", strings.TrimRight(s.PinterestBase, "/"))
	params := url.Values{}
	params.Set("q", query)

	resp, err := s.Client.Get(ctx, searchURL, params)
	if err != nil {
		return nil, fmt.Errorf("pinterest fallback failed: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pinterest page: %w", err)
	}

	seen := map[string]bool{}
	var results []Result
	doc.Find("img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok || !strings.Contains(src, "pinimg.com") {
			return true
		}
		full := pinterestOriginalURL(src, sel.AttrOr("srcset", ""))
		if seen[full] {
			return true
		}
		seen[full] = true
		results = append(results, Result{
			URL:       full,
			Title:     sel.AttrOr("alt", "Pinterest image for "+query),
			Source:    "Pinterest",
			Thumbnail: src,
		})
		return len(results) < maxResults
	})

	return results, nil
}
