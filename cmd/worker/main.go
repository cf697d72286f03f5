package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"frontier.app/frontier/common/arangodb"
	"frontier.app/frontier/common/id"
	"frontier.app/frontier/common/llm"
	"frontier.app/frontier/common/logger"
	"frontier.app/frontier/common/otel"
	"frontier.app/frontier/core/config"
	"frontier.app/frontier/core/db"
	"frontier.app/frontier/internal/analyzer"
	"frontier.app/frontier/internal/archive"
	"frontier.app/frontier/internal/frontier"
	"frontier.app/frontier/internal/queries"
	"frontier.app/frontier/internal/queue"
	"frontier.app/frontier/internal/search"
	"frontier.app/frontier/internal/store"
	"frontier.app/frontier/internal/validator"
	"frontier.app/frontier/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "frontier worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.RedisGroup,
		"consumer_name", cfg.Pipeline.RedisConsumer)

	// Different node ID than the API server so snowflake IDs never collide
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	orchestrator, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build analysis pipeline", "error", err)
		os.Exit(1)
	}

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Pipeline.RedisStream,
		Group:        cfg.Pipeline.RedisGroup,
		Consumer:     cfg.Pipeline.RedisConsumer,
		DLQStream:    cfg.Pipeline.RedisDLQStream,
		BatchSize:    1, // One analysis run at a time; runs are long-lived
		Block:        5 * time.Second,
		MaxAttempts:  3,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	runs := store.NewRunStore(database)
	processor := worker.NewProcessor(runs, orchestrator, nil)

	w := worker.New(consumer, processor, worker.Config{
		MaxAttempts: 3,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Pipeline.RedisStream,
		Group:     cfg.Pipeline.RedisGroup,
		Consumer:  cfg.Pipeline.RedisConsumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  1 * time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop reclaimer first (quick)
	reclaimer.Stop()

	// Stop worker (may be mid-run)
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

// buildOrchestrator wires the four pipeline collaborators. Only the search
// backend is mandatory; the LLM clients and the archive degrade to their
// heuristic fallbacks when unconfigured.
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
	} else {
		slog.WarnContext(ctx, "analyzer llm unconfigured, using heuristic extraction only")
	}

	var queryClient llm.Client
	if cfg.QueryLLM.Enabled() {
		queryClient, err = llm.New(llmConfig(cfg.QueryLLM))
		if err != nil {
			return nil, fmt.Errorf("query llm: %w", err)
		}
	} else {
		slog.WarnContext(ctx, "query llm unconfigured, using naive search queries")
	}

	var validatorClient llm.Client
	if cfg.ValidatorLLM.Enabled() {
		validatorClient, err = llm.New(llmConfig(cfg.ValidatorLLM))
		if err != nil {
			return nil, fmt.Errorf("validator llm: %w", err)
		}
	} else {
		slog.WarnContext(ctx, "validator llm unconfigured, using fallback enrichment only")
	}

	docs := archive.New(setupArchive(ctx, cfg), nil)

	return frontier.New(
		frontier.Config{DrainCap: cfg.Analysis.DrainCap},
		analyzer.New(agent, nil, docs, nil),
		queries.New(queryClient, nil),
		backend,
		validator.New(validatorClient, nil),
	), nil
}

func setupArchive(ctx context.Context, cfg config.Config) arangodb.Client {
	if !cfg.ArangoDB.Enabled() {
		slog.InfoContext(ctx, "document archive disabled (no arangodb configured)")
		return nil
	}

	client, err := arangodb.New(ctx, arangodb.Config{
		URL:      cfg.ArangoDB.URL,
		Username: cfg.ArangoDB.Username,
		Password: cfg.ArangoDB.Password,
		Database: cfg.ArangoDB.Database,
	})
	if err != nil {
		slog.WarnContext(ctx, "document archive disabled", "error", err)
		return nil
	}
	if err := client.EnsureDatabase(ctx); err != nil {
		slog.WarnContext(ctx, "document archive disabled", "error", err)
		return nil
	}
	if err := client.EnsureCollection(ctx); err != nil {
		slog.WarnContext(ctx, "document archive disabled", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "document archive connected", "url", cfg.ArangoDB.URL)
	return client
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

const banner = `
███████╗██████╗  ██████╗ ███╗   ██╗████████╗██╗███████╗██████╗
██╔════╝██╔══██╗██╔═══██╗████╗  ██║╚══██╔══╝██║██╔════╝██╔══██╗
█████╗  ██████╔╝██║   ██║██╔██╗ ██║   ██║   ██║█████╗  ██████╔╝
██╔══╝  ██╔══██╗██║   ██║██║╚██╗██║   ██║   ██║██╔══╝  ██╔══██╗
██║     ██║  ██║╚██████╔╝██║ ╚████║   ██║   ██║███████╗██║  ██║
╚═╝     ╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═══╝   ╚═╝   ╚═╝╚══════╝╚═╝  ╚═╝
`
