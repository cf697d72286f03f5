package analyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	fetchTimeout  = 30 * time.Second
	maxFetchBytes = 2 << 20
	minTextLength = 100
)

// Fetcher retrieves the readable text of a document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type httpFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() Fetcher {
	return &httpFetcher{client: &http.Client{Timeout: fetchTimeout}}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	// arXiv PDF links carry no extractable text; the abstract page does.
	if strings.Contains(url, "arxiv.org/pdf/") {
		url = strings.Replace(url, "/pdf/", "/abs/", 1)
		url = strings.TrimSuffix(url, ".pdf")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "frontier-analyzer/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}

	text := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		text = stripHTML(text)
	}
	text = collapseWhitespace(text)
	if len(text) < minTextLength {
		return "", fmt.Errorf("document %s yielded no substantial text", url)
	}
	return text, nil
}

// stripHTML drops tags, scripts, and styles, keeping visible text.
func stripHTML(html string) string {
	var b strings.Builder
	b.Grow(len(html) / 2)

	inTag := false
	skipUntil := ""
	lower := strings.ToLower(html)
	for i := 0; i < len(html); i++ {
		if skipUntil != "" {
			if strings.HasPrefix(lower[i:], skipUntil) {
				i += len(skipUntil) - 1
				skipUntil = ""
				inTag = false
			}
			continue
		}
		switch c := html[i]; {
		case c == '<':
			inTag = true
			if strings.HasPrefix(lower[i:], "<script") {
				skipUntil = "</script>"
			} else if strings.HasPrefix(lower[i:], "<style") {
				skipUntil = "</style>"
			}
		case c == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
