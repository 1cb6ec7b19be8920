package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/infrastructure/files"
)

type fileAnalysisRequest struct {
	FilePath     string `mapstructure:"file_path"`
	AnalysisType string `mapstructure:"analysis_type"`
}

func (r *fileAnalysisRequest) Validate() error {
	if strings.TrimSpace(r.FilePath) == "" {
		return missing("file_path")
	}
	if r.AnalysisType == "" {
		r.AnalysisType = "general"
	}
	return nil
}

// FileAnalyzer reads a file and analyzes its content.
type FileAnalyzer struct {
	files Files
	llm   LLM
}

func NewFileAnalyzer(f Files, l LLM) *FileAnalyzer {
	return &FileAnalyzer{files: f, llm: l}
}

func (h *FileAnalyzer) Handle(ctx context.Context, payload executor.Payload) (executor.Result, error) {
	var req fileAnalysisRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	info, err := h.files.Info(req.FilePath)
	if err != nil {
		return nil, err
	}
	if !info.Exists {
		return nil, fmt.Errorf("%w: %s", files.ErrNotFound, req.FilePath)
	}
	content, err := h.files.Process(req.FilePath, info.FileSize)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content.Content) == "" {
		return nil, files.ErrEmptyContent
	}

	analysis, err := h.llm.AnalyzeText(ctx, content.Content, req.AnalysisType)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"analysis_type":   analysis.AnalysisType,
		"analysis_result": analysis.AnalysisResult,
		"file_info":       info,
		"file_content":    content,
	}
	if req.AnalysisType == "code" && content.FileType == "code" {
		review, err := h.llm.AnalyzeCode(ctx, content.Content, content.Language)
		if err != nil {
			return nil, err
		}
		fields["code_analysis"] = review
	}
	return executor.Success(fields), nil
}
