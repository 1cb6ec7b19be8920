package websearch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/domain/search"
)

const (
	defaultMaxResults   = 10
	maxResultsCeiling   = 50
	trendingPerQuery    = 3
	minAcademicKeywords = 2
	academicSuffix      = "research paper study analysis"
)

var academicKeywords = []string{
	"research", "study", "analysis", "paper", "journal", "academic",
	"university", "institute", "scientific", "methodology", "findings",
	"conclusion", "abstract", "introduction", "literature review",
}

var trendingQueries = map[string][]string{
	"general":    {"today's news", "important events", "latest developments"},
	"technology": {"new technologies", "latest apps", "technology news"},
	"business":   {"business news", "economy today", "financial markets"},
	"sports":     {"sports news", "today's matches", "sports results"},
}

// Config tunes the Searcher.
type Config struct {
	MaxResults int
	CacheSize  int
	CacheTTL   time.Duration
}

// Searcher implements the search modes on top of an Engine.
type Searcher struct {
	engine     Engine
	maxResults int
	cache      *expirable.LRU[string, []search.Result]
	logger     zerolog.Logger
}

func NewSearcher(engine Engine, cfg Config, logger zerolog.Logger) *Searcher {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	s := &Searcher{
		engine:     engine,
		maxResults: cfg.MaxResults,
		logger:     logger.With().Str("service", "websearch").Logger(),
	}
	if cfg.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, []search.Result](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return s
}

// Search runs req according to its mode.
func (s *Searcher) Search(ctx context.Context, req search.Request) ([]search.Result, error) {
	var (
		results []search.Result
		err     error
	)
	switch req.Mode {
	case search.ModeAcademic:
		results, err = s.academic(ctx, req.Query)
	case search.ModeTrending:
		results, err = s.trending(ctx, req.Category)
	case search.ModeLocal:
		results, err = s.local(ctx, req.Query, req.Location)
	case search.ModeRecent:
		results, err = s.recent(ctx, req.Query, req.Days)
	default:
		mode := req.Mode
		if mode == "" {
			mode = search.ModeWeb
		}
		results, err = s.query(ctx, Query{Text: req.Query, Mode: mode, Max: s.limit(req.MaxResults)})
	}
	if err != nil {
		s.logger.Error().Err(err).Str("query", req.Query).Str("mode", string(req.Mode)).Msg("search failed")
		return nil, err
	}
	s.logger.Info().Str("query", req.Query).Str("mode", string(req.Mode)).Int("results", len(results)).Msg("search completed")
	return results, nil
}

// limit resolves a requested result count. Requests above the ceiling
// (or the configured maximum, when that is larger) are clamped.
func (s *Searcher) limit(n int) int {
	if n <= 0 {
		return s.maxResults
	}
	return min(n, max(s.maxResults, maxResultsCeiling))
}

func (s *Searcher) query(ctx context.Context, q Query) ([]search.Result, error) {
	key := fmt.Sprintf("%s|%d|%s|%s", q.Mode, q.Max, q.Freshness, q.Text)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			return append([]search.Result(nil), hit...), nil
		}
	}
	results, err := s.engine.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, append([]search.Result(nil), results...))
	}
	return results, nil
}

func (s *Searcher) academic(ctx context.Context, query string) ([]search.Result, error) {
	results, err := s.query(ctx, Query{
		Text: query + " " + academicSuffix,
		Mode: search.ModeWeb,
		Max:  s.maxResults,
	})
	if err != nil {
		return nil, err
	}
	out := make([]search.Result, 0, len(results))
	for _, r := range results {
		title, snippet := strings.ToLower(r.Title), strings.ToLower(r.Snippet)
		score := 0
		for _, kw := range academicKeywords {
			if strings.Contains(title, kw) || strings.Contains(snippet, kw) {
				score++
			}
		}
		if score >= minAcademicKeywords {
			r.AcademicScore = score
			r.SearchType = search.ModeAcademic
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AcademicScore > out[j].AcademicScore })
	return capResults(out, s.maxResults), nil
}

func (s *Searcher) trending(ctx context.Context, category string) ([]search.Result, error) {
	queries, ok := trendingQueries[category]
	if !ok {
		queries = trendingQueries["general"]
	}
	seen := make(map[string]struct{})
	var out []search.Result
	for _, q := range queries {
		results, err := s.query(ctx, Query{Text: q, Mode: search.ModeNews, Max: trendingPerQuery})
		if err != nil {
			s.logger.Warn().Err(err).Str("query", q).Msg("trending query failed")
			continue
		}
		for _, r := range results {
			if _, dup := seen[r.Link]; dup {
				continue
			}
			seen[r.Link] = struct{}{}
			out = append(out, r)
		}
	}
	return capResults(out, s.maxResults), nil
}

func (s *Searcher) local(ctx context.Context, query, location string) ([]search.Result, error) {
	results, err := s.query(ctx, Query{
		Text: strings.TrimSpace(query + " " + location),
		Mode: search.ModeWeb,
		Max:  s.maxResults,
	})
	if err != nil {
		return nil, err
	}
	words := strings.Fields(strings.ToLower(location))
	out := make([]search.Result, 0, len(results))
	for _, r := range results {
		haystack := strings.ToLower(r.Title + " " + r.Snippet + " " + r.Source)
		for _, w := range words {
			if strings.Contains(haystack, w) {
				r.LocalRelevance = true
				r.SearchType = search.ModeLocal
				out = append(out, r)
				break
			}
		}
	}
	return capResults(out, s.maxResults), nil
}

func (s *Searcher) recent(ctx context.Context, query string, days int) ([]search.Result, error) {
	results, err := s.query(ctx, Query{
		Text:      query,
		Mode:      search.ModeNews,
		Max:       s.maxResults * 2,
		Freshness: freshness(days),
	})
	if err != nil {
		return nil, err
	}
	return capResults(results, s.maxResults), nil
}

// freshness maps a day window onto the provider's date filter.
func freshness(days int) string {
	switch {
	case days <= 0:
		return ""
	case days <= 1:
		return "d"
	case days <= 7:
		return "w"
	case days <= 31:
		return "m"
	default:
		return "y"
	}
}

func capResults(results []search.Result, n int) []search.Result {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
