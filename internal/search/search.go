package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"
)

const (
	queryByFields        = "title,abstract"
	validationQueryLimit = 3
)

// Config holds the Typesense connection settings for the paper index.
type Config struct {
	URL        string
	APIKey     string
	Collection string
}

// Backend searches the paper index and returns document refs.
type Backend interface {
	Search(ctx context.Context, queries []string, limitPerQuery int) ([]string, error)
	SearchForValidation(ctx context.Context, gapDescription string) ([]string, error)
}

type backend struct {
	client     *typesense.Client
	collection string
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (Backend, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("typesense url and api key are required")
	}
	if cfg.Collection == "" {
		cfg.Collection = "papers"
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
	)
	return &backend{client: client, collection: cfg.Collection, logger: logger}, nil
}

// Search runs each query against the index and returns deduplicated refs,
// capped at limitPerQuery per query across the whole batch. Individual query
// failures are logged and skipped.
func (b *backend) Search(ctx context.Context, queries []string, limitPerQuery int) ([]string, error) {
	if limitPerQuery <= 0 {
		limitPerQuery = 1
	}

	seen := make(map[string]struct{})
	var refs []string
	for _, query := range queries {
		if query == "" {
			continue
		}
		results, err := b.searchOne(ctx, query, limitPerQuery)
		if err != nil {
			b.logger.WarnContext(ctx, "search query failed", "query", query, "error", err)
			continue
		}
		for _, ref := range results {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}

	if limit := limitPerQuery * len(queries); len(refs) > limit {
		refs = refs[:limit]
	}
	b.logger.InfoContext(ctx, "search completed", "queries", len(queries), "unique_refs", len(refs))
	return refs, nil
}

// SearchForValidation builds targeted queries from the gap's key terms and
// looks for documents that might already address it.
func (b *backend) SearchForValidation(ctx context.Context, gapDescription string) ([]string, error) {
	terms := KeyTerms(gapDescription)

	second := "solution"
	if len(terms) > 1 {
		second = terms[1]
	}
	queries := []string{
		joinTerms(terms, 3),
		terms[0] + " " + second,
		terms[0] + " method",
	}
	return b.Search(ctx, queries, validationQueryLimit)
}

func (b *backend) searchOne(ctx context.Context, query string, limit int) ([]string, error) {
	result, err := b.client.Collection(b.collection).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String(queryByFields),
		PerPage: pointer.Int(limit),
	})
	if err != nil {
		return nil, err
	}
	if result.Hits == nil {
		return nil, nil
	}

	refs := make([]string, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		if url, ok := doc["url"].(string); ok && url != "" {
			refs = append(refs, url)
		}
	}
	return refs, nil
}

func joinTerms(terms []string, n int) string {
	if len(terms) > n {
		terms = terms[:n]
	}
	out := ""
	for i, t := range terms {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}
