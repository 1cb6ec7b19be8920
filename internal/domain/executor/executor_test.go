package executor

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire(t *testing.T) {
	e := New("web-search-1", TypeWebSearch, "Web Searcher", []string{"web_search"})

	require.True(t, e.TryAcquire())
	assert.True(t, e.IsBusy())
	assert.False(t, e.TryAcquire())

	e.Release()
	assert.False(t, e.IsBusy())
	assert.True(t, e.IsAvailable())
}

func TestTryAcquireInactive(t *testing.T) {
	e := New("web-search-1", TypeWebSearch, "Web Searcher", nil)
	e.SetStatus(StatusInactive)

	assert.False(t, e.TryAcquire())
	assert.False(t, e.IsBusy())
	assert.False(t, e.IsAvailable())
}

func TestTryAcquireConcurrent(t *testing.T) {
	e := New("summarization-1", TypeSummarization, "Content Summarizer", nil)

	var (
		wg       sync.WaitGroup
		acquired atomic.Int32
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.TryAcquire() {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), acquired.Load())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("data-analysis")
	require.NoError(t, err)
	assert.Equal(t, TypeDataAnalysis, typ)

	_, err = ParseType("video-editing")
	assert.Error(t, err)
}

func TestSnapshotAndRecord(t *testing.T) {
	caps := []string{"text_summarization"}
	e := New("summarization-1", TypeSummarization, "Content Summarizer", caps)
	caps[0] = "mutated"

	snap := e.Snapshot()
	assert.Equal(t, []string{"text_summarization"}, snap.Capabilities)
	assert.Equal(t, StatusActive, snap.Status)
	assert.False(t, snap.Busy)

	e.SetStatus(StatusInactive)
	rec := e.ToRecord()
	assert.Equal(t, StatusInactive, rec.Status)
	assert.Equal(t, "Content Summarizer", rec.DisplayName)
}

func TestPayloadDecode(t *testing.T) {
	var req struct {
		Query      string `mapstructure:"query"`
		MaxResults int    `mapstructure:"max_results"`
	}
	p := Payload{"query": "go", "max_results": "7", "extra": true}
	require.NoError(t, p.Decode(&req))
	assert.Equal(t, "go", req.Query)
	assert.Equal(t, 7, req.MaxResults)

	assert.Equal(t, "", p.String("missing"))
	assert.Equal(t, "true", p.String("extra"))

	clone := p.Clone()
	clone["query"] = "rust"
	assert.Equal(t, "go", p["query"])
}

func TestResult(t *testing.T) {
	ok := Success(map[string]any{"summary": "s", "status": "ignored"})
	assert.True(t, ok.OK())
	assert.Equal(t, StatusSuccess, ok.Status())

	failed := Failuref("executor %s not found", "x")
	assert.False(t, failed.OK())
	assert.Equal(t, "executor x not found", failed.ErrorMessage())
}
