package agent

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
)

type webSearchRequest struct {
	Query      string `mapstructure:"query"`
	SearchType string `mapstructure:"search_type"`
	MaxResults int    `mapstructure:"max_results"`
	Category   string `mapstructure:"category"`
	Location   string `mapstructure:"location"`
	Days       int    `mapstructure:"days"`
	UserID     int64  `mapstructure:"user_id"`
}

func (r *webSearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return missing("query")
	}
	return nil
}

// WebSearcher searches the web and digests the results.
type WebSearcher struct {
	searcher Searcher
	llm      LLM
	log      search.Repository
	logger   zerolog.Logger
}

// NewWebSearcher creates a web search handler. log may be nil.
func NewWebSearcher(s Searcher, l LLM, log search.Repository, logger zerolog.Logger) *WebSearcher {
	return &WebSearcher{searcher: s, llm: l, log: log, logger: logger}
}

func (h *WebSearcher) StepFields(step string) map[string]any {
	return map[string]any{"query": step}
}

func (h *WebSearcher) Handle(ctx context.Context, payload executor.Payload) (executor.Result, error) {
	var req webSearchRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}
	mode := search.ParseMode(req.SearchType)

	results, err := h.searcher.Search(ctx, search.Request{
		Query:      req.Query,
		Mode:       mode,
		MaxResults: req.MaxResults,
		Category:   req.Category,
		Location:   req.Location,
		Days:       req.Days,
	})
	if err != nil {
		return nil, err
	}
	h.record(ctx, req, mode, len(results))

	if len(results) == 0 {
		return executor.Success(map[string]any{
			"query":       req.Query,
			"search_type": mode,
			"message":     "no results found",
			"results":     []search.Result{},
		}), nil
	}

	digest, err := h.llm.ProcessSearchResults(ctx, req.Query, results)
	if err != nil {
		return nil, err
	}
	return executor.Success(map[string]any{
		"query":          digest.Query,
		"search_type":    mode,
		"search_results": digest.Results,
		"analysis":       digest.Analysis,
		"summary":        digest.Summary,
	}), nil
}

func (h *WebSearcher) record(ctx context.Context, req webSearchRequest, mode search.Mode, n int) {
	if h.log == nil {
		return
	}
	rec := &search.Record{
		UserID:       req.UserID,
		Query:        req.Query,
		SearchType:   mode,
		ResultsCount: n,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.log.Create(ctx, rec); err != nil {
		h.logger.Warn().Err(err).Str("query", req.Query).Msg("record search failed")
	}
}
