package queries

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"frontier.app/frontier/common/llm"
	"frontier.app/frontier/internal/domain"
)

const maxQueries = 3

// Generator produces search queries for validating or expanding around a gap.
// Callers are expected to fall back to naive queries when generation fails.
type Generator interface {
	ValidationQueries(ctx context.Context, gap *domain.Gap) ([]string, error)
	ExpansionQueries(ctx context.Context, gap *domain.Gap) ([]string, error)
}

type generator struct {
	client llm.Client
	logger *slog.Logger
}

func New(client llm.Client, logger *slog.Logger) Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &generator{client: client, logger: logger}
}

type queryList struct {
	Queries []string `json:"queries" jsonschema_description:"Search query strings, most promising first"`
}

var querySchema = llm.GenerateSchema[queryList]()

func (g *generator) ValidationQueries(ctx context.Context, gap *domain.Gap) ([]string, error) {
	prompt := fmt.Sprintf(`A research gap has been identified:

%q (category: %s)

Generate up to %d literature search queries that would surface papers which may have ALREADY SOLVED this gap. Target solution-oriented phrasing, not restatements of the gap.`,
		gap.Description, gap.Category, maxQueries)
	return g.generate(ctx, "validation_queries", prompt)
}

func (g *generator) ExpansionQueries(ctx context.Context, gap *domain.Gap) ([]string, error) {
	prompt := fmt.Sprintf(`A research gap has been identified:

%q (category: %s)

Generate up to %d literature search queries to discover RELATED work in the surrounding research area. Target adjacent methods and problem variants, not the gap itself.`,
		gap.Description, gap.Category, maxQueries)
	return g.generate(ctx, "expansion_queries", prompt)
}

func (g *generator) generate(ctx context.Context, name, prompt string) ([]string, error) {
	if g.client == nil {
		return nil, fmt.Errorf("no llm client configured")
	}

	var result queryList
	_, err := g.client.Chat(ctx, llm.Request{
		SystemPrompt: "You generate concise academic literature search queries. Each query is a short keyword phrase, not a sentence.",
		UserPrompt:   prompt,
		SchemaName:   name,
		Schema:       querySchema,
		Temperature:  llm.Temp(0.3),
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", name, err)
	}

	queries := make([]string, 0, maxQueries)
	for _, q := range result.Queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == maxQueries {
			break
		}
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%s: model returned no queries", name)
	}
	return queries, nil
}
