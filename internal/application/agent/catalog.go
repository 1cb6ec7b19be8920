package agent

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
)

// Deps are the collaborators shared by all executors.
type Deps struct {
	LLM         LLM
	Searcher    Searcher
	Files       Files
	SearchLog   search.Repository
	Planner     Planner
	Coordinator Coordinator
}

// Entry describes one executor type.
type Entry struct {
	Type         executor.Type
	DisplayName  string
	Capabilities []string
	NewHandler   func(Deps, zerolog.Logger) Handler
}

// Catalog lists every executor type in registration order.
var Catalog = []Entry{
	{
		Type:         executor.TypeFileAnalysis,
		DisplayName:  "File Analyzer",
		Capabilities: []string{"pdf_analysis", "word_analysis", "excel_analysis", "code_analysis", "text_analysis"},
		NewHandler: func(d Deps, _ zerolog.Logger) Handler {
			return NewFileAnalyzer(d.Files, d.LLM)
		},
	},
	{
		Type:         executor.TypeWebSearch,
		DisplayName:  "Web Searcher",
		Capabilities: []string{"web_search", "news_search", "academic_search", "local_search", "trending_search"},
		NewHandler: func(d Deps, logger zerolog.Logger) Handler {
			return NewWebSearcher(d.Searcher, d.LLM, d.SearchLog, logger)
		},
	},
	{
		Type:         executor.TypeSummarization,
		DisplayName:  "Content Summarizer",
		Capabilities: []string{"text_summarization", "content_analysis", "key_points_extraction"},
		NewHandler: func(d Deps, _ zerolog.Logger) Handler {
			return NewSummarizer(d.LLM)
		},
	},
	{
		Type:         executor.TypeFileGeneration,
		DisplayName:  "File Generator",
		Capabilities: []string{"text_generation", "code_generation", "report_generation", "document_creation"},
		NewHandler: func(d Deps, _ zerolog.Logger) Handler {
			return NewFileGenerator(d.LLM, d.Files)
		},
	},
	{
		Type:         executor.TypeTaskManagement,
		DisplayName:  "Task Manager",
		Capabilities: []string{"task_planning", "task_coordination", "workflow_management", "resource_allocation"},
		NewHandler: func(d Deps, _ zerolog.Logger) Handler {
			return NewTaskManager(d.Planner, d.Coordinator)
		},
	},
	{
		Type:         executor.TypeDataAnalysis,
		DisplayName:  "Data Analyzer",
		Capabilities: []string{"data_analysis", "statistical_analysis", "trend_analysis", "insight_generation"},
		NewHandler: func(d Deps, _ zerolog.Logger) Handler {
			return NewDataAnalyzer(d.LLM)
		},
	},
}

// Lookup returns the catalog entry for typ.
func Lookup(typ executor.Type) (Entry, bool) {
	for _, e := range Catalog {
		if e.Type == typ {
			return e, true
		}
	}
	return Entry{}, false
}

// Spec asks for count executors of one type.
type Spec struct {
	Type  string `koanf:"type"`
	Count int    `koanf:"count"`
}

// DefaultSpecs is one executor of each type.
func DefaultSpecs() []Spec {
	specs := make([]Spec, 0, len(Catalog))
	for _, e := range Catalog {
		specs = append(specs, Spec{Type: string(e.Type), Count: 1})
	}
	return specs
}

// Build constructs the executors named by specs. Ids are <type>-<n>,
// numbered per type from 1.
func Build(specs []Spec, deps Deps, logger zerolog.Logger) ([]*Agent, error) {
	seen := make(map[executor.Type]int)
	var out []*Agent
	for _, s := range specs {
		typ, err := executor.ParseType(s.Type)
		if err != nil {
			return nil, err
		}
		entry, ok := Lookup(typ)
		if !ok {
			return nil, fmt.Errorf("no catalog entry for %s", typ)
		}
		count := s.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			seen[typ]++
			id := fmt.Sprintf("%s-%d", typ, seen[typ])
			exec := executor.New(id, typ, entry.DisplayName, entry.Capabilities)
			l := logger.With().Str("service", "executor").Logger()
			out = append(out, New(exec, entry.NewHandler(deps, l), l))
		}
	}
	return out, nil
}
