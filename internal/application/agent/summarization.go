package agent

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
)

const summaryTypeKeyPoints = "key_points"

type summarizationRequest struct {
	Content        string `mapstructure:"content"`
	SummaryType    string `mapstructure:"summary_type"`
	MaxLength      int    `mapstructure:"max_length"`
	TargetLanguage string `mapstructure:"target_language"`
}

func (r *summarizationRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return missing("content")
	}
	if r.SummaryType == "" {
		r.SummaryType = "general"
	}
	if r.MaxLength <= 0 {
		r.MaxLength = llm.DefaultSummaryLength
	}
	return nil
}

// Summarizer condenses content and optionally extracts key points.
type Summarizer struct {
	llm LLM
}

func NewSummarizer(l LLM) *Summarizer {
	return &Summarizer{llm: l}
}

func (h *Summarizer) StepFields(step string) map[string]any {
	return map[string]any{"content": step}
}

func (h *Summarizer) Handle(ctx context.Context, payload executor.Payload) (executor.Result, error) {
	var req summarizationRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	summary, err := h.llm.Summarize(ctx, req.Content, req.MaxLength)
	if err != nil {
		return nil, err
	}
	if req.TargetLanguage != "" {
		if summary, err = h.llm.Translate(ctx, summary, req.TargetLanguage); err != nil {
			return nil, err
		}
	}
	fields := map[string]any{
		"summary":         summary,
		"summary_type":    req.SummaryType,
		"original_length": utf8.RuneCountInString(req.Content),
		"summary_length":  utf8.RuneCountInString(summary),
	}
	if req.SummaryType == summaryTypeKeyPoints {
		points, err := h.llm.AnalyzeText(ctx, req.Content, "summary")
		if err != nil {
			return nil, err
		}
		fields["key_points"] = points.AnalysisResult
	}
	return executor.Success(fields), nil
}
