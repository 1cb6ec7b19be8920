package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

type dataAnalysisRequest struct {
	Data         any    `mapstructure:"data"`
	AnalysisType string `mapstructure:"analysis_type"`
}

func (r *dataAnalysisRequest) Validate() error {
	if isEmpty(r.Data) {
		return missing("data")
	}
	if r.AnalysisType == "" {
		r.AnalysisType = "general"
	}
	return nil
}

// isEmpty reports data with nothing to analyze. Zero numbers and false
// count as empty.
func isEmpty(v any) bool {
	switch d := v.(type) {
	case nil:
		return true
	case bool:
		return !d
	case float64:
		return d == 0
	case float32:
		return d == 0
	case int:
		return d == 0
	case int64:
		return d == 0
	case string:
		return strings.TrimSpace(d) == ""
	case []any:
		return len(d) == 0
	case map[string]any:
		return len(d) == 0
	}
	return false
}

// dataKind names the shape of decoded JSON data.
func dataKind(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case map[string]any:
		return "dict"
	case string:
		return "str"
	case bool:
		return "bool"
	case float64, float32:
		return "float"
	case int, int32, int64:
		return "int"
	}
	return fmt.Sprintf("%T", v)
}

// DataAnalyzer analyzes structured data and writes a report.
type DataAnalyzer struct {
	llm LLM
}

func NewDataAnalyzer(l LLM) *DataAnalyzer {
	return &DataAnalyzer{llm: l}
}

func (h *DataAnalyzer) StepFields(step string) map[string]any {
	return map[string]any{"data": step}
}

func (h *DataAnalyzer) Handle(ctx context.Context, payload executor.Payload) (executor.Result, error) {
	var req dataAnalysisRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	var analysis any
	switch req.AnalysisType {
	case "statistical", "trend":
		out, err := h.llm.AnalyzeData(ctx, req.Data, req.AnalysisType)
		if err != nil {
			return nil, err
		}
		analysis = out
	default:
		out, err := h.llm.AnalyzeText(ctx, fmt.Sprint(req.Data), "technical")
		if err != nil {
			return nil, err
		}
		analysis = out
	}

	report, err := h.llm.GenerateReport(ctx, req.Data, req.AnalysisType)
	if err != nil {
		return nil, err
	}
	return executor.Success(map[string]any{
		"analysis_result": analysis,
		"report":          report,
		"data_summary": map[string]any{
			"data_type":     dataKind(req.Data),
			"data_size":     len(fmt.Sprint(req.Data)),
			"analysis_type": req.AnalysisType,
		},
	}), nil
}
