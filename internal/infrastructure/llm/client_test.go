package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-hub/agent-hub/internal/domain/search"
)

type scriptedProvider struct {
	replies []string
	err     error
	prompts []string
}

func (p *scriptedProvider) Complete(_ context.Context, req Request) (string, error) {
	p.prompts = append(p.prompts, req.Prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "ok", nil
	}
	out := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return out, nil
}

func newTestClient(p Provider) *Client {
	return NewClient(p, Config{Temperature: 0.7, MaxTokens: 1024}, zerolog.Nop())
}

func TestGenerateTextFraming(t *testing.T) {
	p := &scriptedProvider{replies: []string{"  hello  "}}
	c := newTestClient(p)

	out, err := c.GenerateText(context.Background(), "hi", WithSystemPrompt("be nice"), WithContext("ctx"))
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	require.Len(t, p.prompts, 1)
	assert.Equal(t, "System: be nice\n\nContext: ctx\n\nUser: hi\n\nAssistant:", p.prompts[0])
}

func TestGenerateTextErrors(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		c := newTestClient(&scriptedProvider{err: errors.New("quota")})
		_, err := c.GenerateText(context.Background(), "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota")
	})

	t.Run("empty response", func(t *testing.T) {
		c := newTestClient(&scriptedProvider{replies: []string{"   "}})
		_, err := c.GenerateText(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestSummarizeTruncates(t *testing.T) {
	c := newTestClient(&scriptedProvider{replies: []string{strings.Repeat("a", 50)}})
	out, err := c.Summarize(context.Background(), "long text", 10)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 10), out)
}

func TestAnalyzeTextUnknownTypeUsesGeneralPrompt(t *testing.T) {
	p := &scriptedProvider{replies: []string{"insight"}}
	c := newTestClient(p)

	a, err := c.AnalyzeText(context.Background(), "body", "poetry")
	require.NoError(t, err)
	assert.Equal(t, "poetry", a.AnalysisType)
	assert.Equal(t, "insight", a.AnalysisResult)
	assert.Contains(t, p.prompts[0], analysisPrompts["general"])
}

func TestProcessSearchResultsUsesTopFive(t *testing.T) {
	p := &scriptedProvider{replies: []string{"analysis", "summary"}}
	c := newTestClient(p)

	results := make([]search.Result, 7)
	for i := range results {
		results[i] = search.Result{Title: string(rune('A' + i)), Link: "https://example.com"}
	}
	digest, err := c.ProcessSearchResults(context.Background(), "q", results)
	require.NoError(t, err)
	assert.Equal(t, "analysis", digest.Analysis)
	assert.Equal(t, "summary", digest.Summary)
	assert.Len(t, digest.Results, 7)
	assert.Contains(t, p.prompts[0], "5. E")
	assert.NotContains(t, p.prompts[0], "6. F")
}

func TestGenerateTaskPlan(t *testing.T) {
	p := &scriptedProvider{replies: []string{"Step 1: search\nStep 2: summarize", "short"}}
	c := newTestClient(p)

	plan, err := c.GenerateTaskPlan(context.Background(), "do it", []string{"Web Searcher", "Summarizer"})
	require.NoError(t, err)
	assert.Equal(t, "Step 1: search\nStep 2: summarize", plan.ExecutionPlan)
	assert.Equal(t, "short", plan.Summary)
	assert.Contains(t, p.prompts[0], "- Web Searcher")
}

func TestAnalyzeDataRejectsUnknownKind(t *testing.T) {
	c := newTestClient(&scriptedProvider{})
	_, err := c.AnalyzeData(context.Background(), []int{1, 2}, "fourier")
	require.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "abc", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("abc", 10))
}

func TestTranslateDefaultsToEnglish(t *testing.T) {
	p := &scriptedProvider{replies: []string{"hello"}}
	c := newTestClient(p)

	out, err := c.Translate(context.Background(), "مرحبا", "")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Contains(t, p.prompts[0], "to English")
}
