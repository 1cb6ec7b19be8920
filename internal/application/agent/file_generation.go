package agent

import (
	"context"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

type fileGenerationRequest struct {
	FileType           string         `mapstructure:"file_type"`
	ContentDescription string         `mapstructure:"content_description"`
	FileName           string         `mapstructure:"file_name"`
	FormatSpecs        map[string]any `mapstructure:"format_specs"`
}

func (r *fileGenerationRequest) Validate() error {
	if strings.TrimSpace(r.FileType) == "" {
		return missing("file_type")
	}
	if strings.TrimSpace(r.ContentDescription) == "" {
		return missing("content_description")
	}
	return nil
}

// FileGenerator writes LLM generated content to the output directory.
type FileGenerator struct {
	llm   LLM
	files Files
	now   func() time.Time
}

func NewFileGenerator(l LLM, f Files) *FileGenerator {
	return &FileGenerator{llm: l, files: f, now: time.Now}
}

func (h *FileGenerator) StepFields(step string) map[string]any {
	return map[string]any{"content_description": step, "file_type": "text"}
}

func (h *FileGenerator) Handle(ctx context.Context, payload executor.Payload) (executor.Result, error) {
	var req fileGenerationRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	content, err := h.llm.GenerateFileContent(ctx, req.FileType, req.ContentDescription, req.FormatSpecs)
	if err != nil {
		return nil, err
	}
	now := h.now().UTC()
	name := req.FileName
	if name == "" {
		name = "generated_file_" + now.Format("20060102_150405")
	}
	path, err := h.files.Save(content, name, req.FileType)
	if err != nil {
		return nil, err
	}
	return executor.Success(map[string]any{
		"file_path":      path,
		"file_name":      filepath.Base(path),
		"file_type":      req.FileType,
		"content_length": utf8.RuneCountInString(content),
		"generated_at":   now.Format(time.RFC3339),
	}), nil
}
