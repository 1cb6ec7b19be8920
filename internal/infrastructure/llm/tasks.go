package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agent-hub/agent-hub/internal/domain/search"
)

const (
	searchDigestResults  = 5
	searchSummaryLength  = 300
	planSummaryLength    = 250
	codeSummaryLength    = 200
	DefaultSummaryLength = 500
)

var analysisPrompts = map[string]string{
	"general":   "Analyze the following text and give a thorough summary with the main points and key insights:",
	"summary":   "Summarize the following text as clear, concise key points:",
	"sentiment": "Analyze the sentiment of the following text and identify its overall tone:",
	"technical": "Analyze the following technical text and identify the important concepts and terms:",
	"code":      "Analyze the following code and identify its functions and potential problems:",
}

// Analysis is the outcome of AnalyzeText.
type Analysis struct {
	AnalysisType   string `json:"analysis_type"`
	AnalysisResult string `json:"analysis_result"`
}

// AnalyzeText runs one of the canned analysis prompts over text. Unknown
// analysis types use the general prompt.
func (c *Client) AnalyzeText(ctx context.Context, text, analysisType string) (*Analysis, error) {
	if analysisType == "" {
		analysisType = "general"
	}
	prompt, ok := analysisPrompts[analysisType]
	if !ok {
		prompt = analysisPrompts["general"]
	}
	out, err := c.GenerateText(ctx, fmt.Sprintf("%s\n\nText:\n%s\n\nAnalysis:", prompt, text))
	if err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}
	return &Analysis{AnalysisType: analysisType, AnalysisResult: out}, nil
}

// Summarize condenses content to at most maxLength runes.
func (c *Client) Summarize(ctx context.Context, content string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}
	prompt := fmt.Sprintf("Summarize the following content in %d words or fewer:\n\nContent:\n%s\n\nSummary:", maxLength, content)
	out, err := c.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return Truncate(out, maxLength), nil
}

// GenerateFileContent writes the body of a new file of fileType.
func (c *Client) GenerateFileContent(ctx context.Context, fileType, description string, formatSpecs map[string]any) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Create the content of a %s file based on the following description:\n\nDescription: %s\n", fileType, description)
	if len(formatSpecs) > 0 {
		specs, err := json.Marshal(formatSpecs)
		if err != nil {
			return "", fmt.Errorf("encode format specs: %w", err)
		}
		fmt.Fprintf(&b, "Formatting requirements: %s\n", specs)
	}
	b.WriteString("\nContent:")
	out, err := c.GenerateText(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("generate file content: %w", err)
	}
	return out, nil
}

// SearchDigest is the LLM reading of a result set.
type SearchDigest struct {
	Query    string          `json:"query"`
	Results  []search.Result `json:"search_results"`
	Analysis string          `json:"analysis"`
	Summary  string          `json:"summary"`
}

// ProcessSearchResults analyzes the top results for query and summarizes
// the analysis.
func (c *Client) ProcessSearchResults(ctx context.Context, query string, results []search.Result) (*SearchDigest, error) {
	var b strings.Builder
	for i, r := range results {
		if i == searchDigestResults {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   Link: %s\n\n", i+1, orDefault(r.Title, "untitled"), orDefault(r.Snippet, "no description"), orDefault(r.Link, "no link"))
	}
	prompt := fmt.Sprintf(`Analyze the following search results for the query %q:

Search results:
%s
Required:
1. Summarize the main information
2. Group the results by topic
3. Identify the most reliable sources
4. Give insights and recommendations

Analysis:`, query, b.String())

	analysis, err := c.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("process search results: %w", err)
	}
	summary, err := c.Summarize(ctx, analysis, searchSummaryLength)
	if err != nil {
		return nil, err
	}
	return &SearchDigest{Query: query, Results: results, Analysis: analysis, Summary: summary}, nil
}

// TaskPlan is a generated execution plan.
type TaskPlan struct {
	TaskDescription    string   `json:"task_description"`
	AvailableExecutors []string `json:"available_executors"`
	ExecutionPlan      string   `json:"execution_plan"`
	Summary            string   `json:"summary"`
}

// GenerateTaskPlan asks for an enumerated step plan over the given executors.
// Each step is requested on its own "Step N: <description>" line.
func (c *Client) GenerateTaskPlan(ctx context.Context, description string, executors []string) (*TaskPlan, error) {
	var list strings.Builder
	for _, name := range executors {
		fmt.Fprintf(&list, "- %s\n", name)
	}
	prompt := fmt.Sprintf(`Plan how to carry out the following task with the available executors.

Task: %s

Available executors:
%s
Required:
1. Split the task into steps
2. Name the executor suited to each step
3. Order the steps
4. Estimate the time required
5. List requirements and resources

Write every step on its own line in the form "Step N: <description>".

Plan:`, description, list.String())

	plan, err := c.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate task plan: %w", err)
	}
	summary, err := c.Summarize(ctx, plan, planSummaryLength)
	if err != nil {
		return nil, err
	}
	return &TaskPlan{
		TaskDescription:    description,
		AvailableExecutors: executors,
		ExecutionPlan:      plan,
		Summary:            summary,
	}, nil
}

// GenerateReport writes a report of reportType over data.
func (c *Client) GenerateReport(ctx context.Context, data any, reportType string) (string, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report data: %w", err)
	}
	prompt := fmt.Sprintf(`Write a %s report based on the following data:

Data:
%s

Required:
1. Executive summary
2. Key points
3. Analysis and interpretation
4. Recommendations
5. Conclusion

Report:`, orDefault(reportType, "general"), raw)
	out, err := c.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	return out, nil
}

var dataAnalysisPrompts = map[string]string{
	"statistical": `Perform a thorough statistical analysis of the following data:

Data: %v

Required:
1. Compute the basic statistics (mean, median, standard deviation)
2. Identify patterns and trends
3. Identify outliers
4. Recommend further analysis

Statistical analysis:`,
	"trend": `Analyze the trends and patterns in the following data:

Data: %v

Required:
1. Identify the main trends
2. Analyze seasonal patterns
3. Forecast future trends
4. Identify the influencing factors

Trend analysis:`,
}

// AnalyzeData runs the dedicated statistical or trend prompt over data.
func (c *Client) AnalyzeData(ctx context.Context, data any, kind string) (string, error) {
	tmpl, ok := dataAnalysisPrompts[kind]
	if !ok {
		return "", fmt.Errorf("unsupported data analysis: %s", kind)
	}
	out, err := c.GenerateText(ctx, fmt.Sprintf(tmpl, data))
	if err != nil {
		return "", fmt.Errorf("%s analysis: %w", kind, err)
	}
	return out, nil
}

// CodeAnalysis is the review of a source file.
type CodeAnalysis struct {
	Language string `json:"language"`
	Analysis string `json:"analysis"`
	Summary  string `json:"summary"`
}

// AnalyzeCode reviews code written in language.
func (c *Client) AnalyzeCode(ctx context.Context, code, language string) (*CodeAnalysis, error) {
	prompt := fmt.Sprintf("Analyze the following %s code:\n\n```%s\n%s\n```\n\nRequired:\n1. Explain what the code does\n2. Identify potential problems\n3. Suggest improvements\n4. Rate the code quality\n5. Suggest tests\n\nAnalysis:", language, language, code)
	analysis, err := c.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze code: %w", err)
	}
	summary, err := c.Summarize(ctx, analysis, codeSummaryLength)
	if err != nil {
		return nil, err
	}
	return &CodeAnalysis{Language: language, Analysis: analysis, Summary: summary}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Translate renders text in targetLanguage.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	prompt := fmt.Sprintf("Translate the following text to %s:\n\nText:\n%s\n\nTranslation:", orDefault(targetLanguage, "English"), text)
	out, err := c.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return out, nil
}
