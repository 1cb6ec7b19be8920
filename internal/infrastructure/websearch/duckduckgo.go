package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/agent-hub/agent-hub/internal/domain/search"
)

const (
	DefaultBaseURL   = "https://html.duckduckgo.com/html/"
	defaultUserAgent = "Mozilla/5.0 (compatible; agent-hub/1.0)"
)

// Query is one request to a search engine.
type Query struct {
	Text      string
	Mode      search.Mode
	Max       int
	Freshness string // d, w, m or y
}

// Engine fetches raw results from a search provider.
type Engine interface {
	Query(ctx context.Context, q Query) ([]search.Result, error)
}

// DuckDuckGo scrapes the DuckDuckGo HTML endpoint.
type DuckDuckGo struct {
	client  *http.Client
	baseURL string
}

func NewDuckDuckGo(baseURL string, timeout time.Duration) *DuckDuckGo {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &DuckDuckGo{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (d *DuckDuckGo) Query(ctx context.Context, q Query) ([]search.Result, error) {
	form := url.Values{}
	form.Set("q", q.Text)
	switch q.Mode {
	case search.ModeNews, search.ModeImages, search.ModeVideos:
		form.Set("iar", string(q.Mode))
	}
	if q.Freshness != "" {
		form.Set("df", q.Freshness)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo response: %w", err)
	}
	return parseResults(doc, q), nil
}

func parseResults(doc *goquery.Document, q Query) []search.Result {
	var results []search.Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if q.Max > 0 && len(results) >= q.Max {
			return false
		}
		a := s.Find("a.result__a").First()
		title := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		link := resolveLink(href)
		if title == "" || link == "" {
			return true
		}
		results = append(results, search.Result{
			Title:      title,
			Link:       link,
			Snippet:    strings.TrimSpace(s.Find(".result__snippet").Text()),
			Source:     strings.TrimSpace(s.Find(".result__url").Text()),
			SearchType: q.Mode,
			Date:       strings.TrimSpace(s.Find(".result__timestamp").Text()),
		})
		return true
	})
	return results
}

// resolveLink unwraps DuckDuckGo redirect links (/l/?uddg=...).
func resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return u.String()
}
