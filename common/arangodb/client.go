package arangodb

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
)

// Client archives analyzed-document summaries.
type Client interface {
	EnsureDatabase(ctx context.Context) error
	EnsureCollection(ctx context.Context) error
	SaveSummary(ctx context.Context, summary DocumentSummary) error
	ListByRun(ctx context.Context, runID int64) ([]DocumentSummary, error)
	Close() error
}

type Config struct {
	URL        string
	Username   string
	Password   string
	Database   string
	Collection string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("arangodb username is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

type client struct {
	conn         connection.Connection
	arangoClient arangodb.Client
	db           arangodb.Database
	cfg          Config
}

func New(ctx context.Context, cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}
	if cfg.Collection == "" {
		cfg.Collection = "analyzed_documents"
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL})
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))

	auth := connection.NewBasicAuth(cfg.Username, cfg.Password)
	if err := conn.SetAuthentication(auth); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	return &client{
		conn:         conn,
		arangoClient: arangodb.NewClient(conn),
		cfg:          cfg,
	}, nil
}

func (c *client) Close() error {
	return nil
}

func (c *client) EnsureDatabase(ctx context.Context) error {
	start := time.Now()

	exists, err := c.arangoClient.DatabaseExists(ctx, c.cfg.Database)
	if err != nil {
		return fmt.Errorf("check database exists: %w", err)
	}

	if !exists {
		_, err = c.arangoClient.CreateDatabase(ctx, c.cfg.Database, nil)
		if err != nil {
			return fmt.Errorf("create database: %w", err)
		}
		slog.InfoContext(ctx, "arangodb database created",
			"database", c.cfg.Database,
			"duration_ms", time.Since(start).Milliseconds())
	}

	db, err := c.arangoClient.GetDatabase(ctx, c.cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	c.db = db

	return nil
}

func (c *client) EnsureCollection(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized, call EnsureDatabase first")
	}

	exists, err := c.db.CollectionExists(ctx, c.cfg.Collection)
	if err != nil {
		return fmt.Errorf("check collection %s exists: %w", c.cfg.Collection, err)
	}
	if exists {
		return nil
	}

	colType := arangodb.CollectionTypeDocument
	_, err = c.db.CreateCollectionV2(ctx, c.cfg.Collection, &arangodb.CreateCollectionPropertiesV2{Type: &colType})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", c.cfg.Collection, err)
	}
	slog.InfoContext(ctx, "arangodb collection created", "collection", c.cfg.Collection)

	return nil
}

// SaveSummary upserts one summary keyed by run and ref, so re-analyzing the
// same document within a run stays idempotent.
func (c *client) SaveSummary(ctx context.Context, summary DocumentSummary) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized")
	}

	col, err := c.db.GetCollection(ctx, c.cfg.Collection, nil)
	if err != nil {
		return fmt.Errorf("get collection %s: %w", c.cfg.Collection, err)
	}

	doc := map[string]any{
		"_key":         makeKey(summary.RunID, summary.Ref),
		"run_id":       summary.RunID,
		"ref":          summary.Ref,
		"title":        summary.Title,
		"key_findings": summary.KeyFindings,
		"limitations":  summary.Limitations,
		"future_work":  summary.FutureWork,
		"analyzed_at":  summary.AnalyzedAt,
	}

	overwrite := arangodb.CollectionDocumentCreateOverwriteModeReplace
	_, err = col.CreateDocumentWithOptions(ctx, doc, &arangodb.CollectionDocumentCreateOptions{
		OverwriteMode: &overwrite,
	})
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

func (c *client) ListByRun(ctx context.Context, runID int64) ([]DocumentSummary, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		FOR d IN @@collection
			FILTER d.run_id == @run
			SORT d.analyzed_at ASC
			RETURN { run_id: d.run_id, ref: d.ref, title: d.title, key_findings: d.key_findings, limitations: d.limitations, future_work: d.future_work, analyzed_at: d.analyzed_at }
	`
	cursor, err := c.db.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]any{
			"@collection": c.cfg.Collection,
			"run":         runID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer cursor.Close()

	var summaries []DocumentSummary
	for cursor.HasMore() {
		var summary DocumentSummary
		if _, err := cursor.ReadDocument(ctx, &summary); err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func makeKey(runID int64, ref string) string {
	hash := md5.Sum([]byte(fmt.Sprintf("%d:%s", runID, ref)))
	return hex.EncodeToString(hash[:])[:16]
}
