package domain

// Document holds the structured findings extracted from one source document.
// Produced at most once per ref within a run and immutable after creation.
type Document struct {
	Ref         string   `json:"ref"`
	Title       string   `json:"title"`
	Limitations []string `json:"limitations"`
	FutureWork  []string `json:"future_work"`
	KeyFindings []string `json:"key_findings"`
}
