package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"frontier.app/frontier/common/arangodb"
	"frontier.app/frontier/common/id"
	"frontier.app/frontier/common/llm"
	"frontier.app/frontier/core/config"
	"frontier.app/frontier/internal/analyzer"
	"frontier.app/frontier/internal/archive"
	"frontier.app/frontier/internal/domain"
	"frontier.app/frontier/internal/frontier"
	"frontier.app/frontier/internal/queries"
	"frontier.app/frontier/internal/search"
	"frontier.app/frontier/internal/validator"
)

const defaultMode = string(domain.AnalysisModeThorough)

// analyze runs a single gap analysis synchronously and prints the result as
// JSON. It uses the same configuration as the worker but needs no Postgres or
// Redis, which makes it handy for trying out prompt or pipeline changes.
func main() {
	url := flag.String("url", "", "seed paper URL to analyze")
	file := flag.String("file", "", "file with seed paper text (alternative to -url)")
	mode := flag.String("mode", defaultMode, "analysis mode: fast or thorough")
	maxPapers := flag.Int("max-papers", 0, "paper cap for the run (0 = mode default)")
	threshold := flag.Int("threshold", 0, "validation strikes required (0 = mode default)")
	flag.Parse()

	ctx := context.Background()

	if (*url == "") == (*file == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -url or -file is required")
		os.Exit(1)
	}

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Quieter default than the services; progress goes to stderr, result to stdout.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := id.Init(3); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize id generator: %v\n", err)
		os.Exit(1)
	}

	req := domain.AnalysisRequest{
		Mode:                domain.AnalysisMode(*mode),
		MaxPapers:           *maxPapers,
		ValidationThreshold: *threshold,
	}
	if !req.Mode.Valid() {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(1)
	}

	if *url != "" {
		req.SeedURL = *url
	} else {
		text, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *file, err)
			os.Exit(1)
		}
		req.SeedText = string(text)
	}

	orchestrator, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build analysis pipeline: %v\n", err)
		os.Exit(1)
	}

	resp := orchestrator.Run(ctx, req)

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if resp.Failure != "" {
		os.Exit(1)
	}
}

func buildOrchestrator(ctx context.Context, cfg config.Config) (*frontier.Orchestrator, error) {
	backend, err := search.New(search.Config{
		URL:        cfg.Typesense.URL,
		APIKey:     cfg.Typesense.APIKey,
		Collection: cfg.Typesense.Collection,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("search backend: %w", err)
	}

	var agent llm.AgentClient
	if cfg.AnalyzerLLM.Enabled() {
		agent, err = llm.NewAgentClient(llmConfig(cfg.AnalyzerLLM))
		if err != nil {
			return nil, fmt.Errorf("analyzer llm: %w", err)
		}
	}

	var queryClient llm.Client
	if cfg.QueryLLM.Enabled() {
		queryClient, err = llm.New(llmConfig(cfg.QueryLLM))
		if err != nil {
			return nil, fmt.Errorf("query llm: %w", err)
		}
	}

	var validatorClient llm.Client
	if cfg.ValidatorLLM.Enabled() {
		validatorClient, err = llm.New(llmConfig(cfg.ValidatorLLM))
		if err != nil {
			return nil, fmt.Errorf("validator llm: %w", err)
		}
	}

	// Archive is optional here, same as in the worker
	var arangoClient arangodb.Client
	if cfg.ArangoDB.Enabled() {
		arangoClient, err = arangodb.New(ctx, arangodb.Config{
			URL:      cfg.ArangoDB.URL,
			Username: cfg.ArangoDB.Username,
			Password: cfg.ArangoDB.Password,
			Database: cfg.ArangoDB.Database,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "archive: disabled (%v)\n", err)
			arangoClient = nil
		} else if err := arangoClient.EnsureDatabase(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "archive: disabled (%v)\n", err)
			arangoClient = nil
		} else if err := arangoClient.EnsureCollection(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "archive: disabled (%v)\n", err)
			arangoClient = nil
		}
	}

	return frontier.New(
		frontier.Config{DrainCap: cfg.Analysis.DrainCap},
		analyzer.New(agent, nil, archive.New(arangoClient, nil), nil),
		queries.New(queryClient, nil),
		backend,
		validator.New(validatorClient, nil),
	), nil
}

func llmConfig(c config.LLMConfig) llm.Config {
	return llm.Config{
		Provider:        c.Provider,
		APIKey:          c.APIKey,
		BaseURL:         c.BaseURL,
		Model:           c.Model,
		MaxTokens:       c.MaxTokens,
		ReasoningEffort: llm.ReasoningEffort(c.ReasoningEffort),
	}
}
