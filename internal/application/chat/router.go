package chat

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
)

const assistantPrompt = "You are a helpful, concise assistant. Answer the user's message directly."

// Dispatcher runs a payload on an executor type.
type Dispatcher interface {
	Execute(ctx context.Context, executorType string, payload executor.Payload, userID int64) executor.Result
}

// Generator produces free-form replies.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, opts ...llm.Option) (string, error)
}

type keyword struct {
	word    string
	pattern *regexp.Regexp
}

func kw(word string) keyword {
	return keyword{word: word, pattern: regexp.MustCompile("(?i)" + regexp.QuoteMeta(word))}
}

type route struct {
	keywords []keyword
	build    func(text string, now time.Time) (executor.Type, executor.Payload)
}

var routes = []route{
	{
		keywords: []keyword{kw("search"), kw("ابحث")},
		build: func(text string, _ time.Time) (executor.Type, executor.Payload) {
			return executor.TypeWebSearch, executor.Payload{"query": text, "search_type": "web", "max_results": 5}
		},
	},
	{
		keywords: []keyword{kw("summarize"), kw("لخص")},
		build: func(text string, _ time.Time) (executor.Type, executor.Payload) {
			return executor.TypeSummarization, executor.Payload{"content": text, "summary_type": "general", "max_length": 300}
		},
	},
	{
		keywords: []keyword{kw("analyze"), kw("حلل")},
		build: func(text string, _ time.Time) (executor.Type, executor.Payload) {
			return executor.TypeSummarization, executor.Payload{"content": text, "summary_type": "key_points", "max_length": 500}
		},
	},
	{
		keywords: []keyword{kw("create"), kw("أنشئ")},
		build: func(text string, now time.Time) (executor.Type, executor.Payload) {
			return executor.TypeFileGeneration, executor.Payload{
				"file_type":           "text",
				"content_description": text,
				"file_name":           "generated_content_" + now.Format("20060102_150405") + ".txt",
			}
		},
	},
}

// Router maps free-text messages onto executors by keyword and falls back
// to a general assistant reply.
type Router struct {
	dispatcher Dispatcher
	generator  Generator
	now        func() time.Time
	logger     zerolog.Logger
}

func NewRouter(d Dispatcher, g Generator, logger zerolog.Logger) *Router {
	return &Router{
		dispatcher: d,
		generator:  g,
		now:        time.Now,
		logger:     logger.With().Str("service", "chat").Logger(),
	}
}

// Reply is the outcome of a routed message.
type Reply struct {
	ExecutorType executor.Type   `json:"executor_type,omitempty"`
	Result       executor.Result `json:"result"`
}

// Handle routes text for userID.
func (r *Router) Handle(ctx context.Context, userID int64, text string) Reply {
	text = strings.TrimSpace(text)
	for _, rt := range routes {
		for _, k := range rt.keywords {
			loc := k.pattern.FindStringIndex(text)
			if loc == nil {
				continue
			}
			typ, payload := rt.build(stripMatch(text, loc), r.now().UTC())
			payload["user_id"] = userID
			r.logger.Debug().Str("keyword", k.word).Str("executor_type", string(typ)).Msg("routing message")
			return Reply{ExecutorType: typ, Result: r.dispatcher.Execute(ctx, string(typ), payload, userID)}
		}
	}

	out, err := r.generator.GenerateText(ctx, text, llm.WithSystemPrompt(assistantPrompt))
	if err != nil {
		r.logger.Error().Err(err).Msg("assistant reply failed")
		return Reply{Result: executor.Failure(err.Error())}
	}
	return Reply{Result: executor.Success(map[string]any{"response": out})}
}

// stripMatch removes the matched keyword span from text. The whole text is
// kept when nothing else remains.
func stripMatch(text string, loc []int) string {
	rest := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	if rest == "" {
		return text
	}
	return rest
}
