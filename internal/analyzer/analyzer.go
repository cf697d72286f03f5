package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"frontier.app/frontier/common/llm"
	"frontier.app/frontier/internal/domain"
)

const (
	maxPromptChars = 12000
	maxListItems   = 5
)

// Analyzer turns a paper (by URL or raw text) into a structured document
// with key findings, limitations, and future work statements.
type Analyzer interface {
	Analyze(ctx context.Context, ref string) (*domain.Document, error)
	AnalyzeText(ctx context.Context, text, ref string) (*domain.Document, error)
}

// Archiver persists analyzed document summaries. Implementations must be
// best-effort; failures are logged by the caller and never abort a run.
type Archiver interface {
	SaveAnalyzed(ctx context.Context, doc *domain.Document)
}

type analyzer struct {
	agent   llm.AgentClient
	fetcher Fetcher
	archive Archiver
	logger  *slog.Logger
}

func New(agent llm.AgentClient, fetcher Fetcher, archive Archiver, logger *slog.Logger) Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	return &analyzer{agent: agent, fetcher: fetcher, archive: archive, logger: logger}
}

// paperExtraction is the tool-call payload the model fills in.
type paperExtraction struct {
	Title       string   `json:"title" jsonschema_description:"Complete paper title as written"`
	KeyFindings []string `json:"key_findings" jsonschema_description:"Concrete achievements with quantified results where available"`
	Limitations []string `json:"limitations" jsonschema_description:"Specific unsolved problems, scope constraints, and remaining challenges"`
	FutureWork  []string `json:"future_work" jsonschema_description:"Actionable research directions the authors recommend"`
}

func (a *analyzer) Analyze(ctx context.Context, ref string) (*domain.Document, error) {
	text, err := a.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetching document %s: %w", ref, err)
	}
	return a.AnalyzeText(ctx, text, ref)
}

func (a *analyzer) AnalyzeText(ctx context.Context, text, ref string) (*domain.Document, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("document %s has no extractable text", ref)
	}
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	doc, err := a.extract(ctx, text, ref)
	if err != nil {
		a.logger.WarnContext(ctx, "structured extraction failed, falling back to section scan",
			"ref", ref, "error", err)
		doc = fallbackExtraction(text, ref)
	}

	if a.archive != nil {
		a.archive.SaveAnalyzed(ctx, doc)
	}
	a.logger.InfoContext(ctx, "document analyzed",
		"ref", ref,
		"title", logTitle(doc.Title),
		"limitations", len(doc.Limitations),
		"future_work", len(doc.FutureWork))
	return doc, nil
}

func (a *analyzer) extract(ctx context.Context, text, ref string) (*domain.Document, error) {
	if a.agent == nil {
		return nil, fmt.Errorf("no agent client configured")
	}

	req := llm.AgentRequest{
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Analyze this research paper and record the analysis:\n\n" + text},
		},
		Tools: []llm.Tool{{
			Name:        "record_paper_analysis",
			Description: "Record the structured analysis of a research paper",
			Parameters:  llm.GenerateSchemaFrom(paperExtraction{}),
		}},
	}

	resp, err := a.agent.ChatWithTools(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.ToolCalls) == 0 {
		return nil, fmt.Errorf("model returned no tool call (finish reason %q)", resp.FinishReason)
	}

	extraction, err := llm.ParseToolArguments[paperExtraction](resp.ToolCalls[0].Arguments)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(extraction.Title)
	if title == "" {
		title = "Unknown Title"
	}
	return &domain.Document{
		Ref:         ref,
		Title:       title,
		KeyFindings: cleanList(extraction.KeyFindings),
		Limitations: cleanList(extraction.Limitations),
		FutureWork:  cleanList(extraction.FutureWork),
	}, nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == maxListItems {
			break
		}
	}
	return out
}

func logTitle(title string) string {
	const max = 80
	if len(title) > max {
		return title[:max]
	}
	return title
}

const systemPrompt = `You are an expert research analyst extracting structured information from academic papers. The analysis feeds an autonomous agent that identifies genuine research gaps, so precision matters more than coverage.

Guidelines:
- Limitations must be specific enough to search for solutions in the literature: what fails, under what conditions, with quantified metrics when the paper gives them.
- Future work items must be actionable research directions, not "further research needed".
- Key findings should capture what the paper actually solved, so gaps claimed elsewhere can be eliminated.
- Skip generic statements entirely rather than recording them.

Always respond by calling the record_paper_analysis tool.`
