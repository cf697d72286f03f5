package analyzer_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontier.app/frontier/common/llm"
	"frontier.app/frontier/internal/analyzer"
)

var _ = Describe("Analyzer", func() {
	var (
		ctx     context.Context
		agent   *mockAgentClient
		fetcher *mockFetcher
		archive *mockArchiver
	)

	BeforeEach(func() {
		ctx = context.Background()
		agent = &mockAgentClient{}
		fetcher = &mockFetcher{}
		archive = &mockArchiver{}
	})

	newAnalyzer := func() analyzer.Analyzer {
		return analyzer.New(agent, fetcher, archive, nil)
	}

	Describe("structured extraction", func() {
		It("builds the document from the tool call payload", func() {
			fetcher.fetchFn = func(_ context.Context, _ string) (string, error) {
				return "Paper body text", nil
			}
			agent.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
				return toolCallResponse(`{
					"title": "Attention Is Not Enough",
					"key_findings": ["finding one"],
					"limitations": ["cannot handle long contexts", "  ", "degrades under noise"],
					"future_work": ["extend to multilingual settings"]
				}`), nil
			}

			doc, err := newAnalyzer().Analyze(ctx, "https://example.org/paper")

			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Ref).To(Equal("https://example.org/paper"))
			Expect(doc.Title).To(Equal("Attention Is Not Enough"))
			Expect(doc.KeyFindings).To(Equal([]string{"finding one"}))
			Expect(doc.Limitations).To(Equal([]string{"cannot handle long contexts", "degrades under noise"}))
			Expect(doc.FutureWork).To(HaveLen(1))
		})

		It("caps each list at five items", func() {
			items := `["a1","a2","a3","a4","a5","a6","a7"]`
			agent.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
				return toolCallResponse(`{"title":"T","key_findings":` + items + `,"limitations":` + items + `,"future_work":` + items + `}`), nil
			}

			doc, err := newAnalyzer().AnalyzeText(ctx, "body text", "ref-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(doc.KeyFindings).To(HaveLen(5))
			Expect(doc.Limitations).To(HaveLen(5))
			Expect(doc.FutureWork).To(HaveLen(5))
		})

		It("substitutes a placeholder for a blank title", func() {
			agent.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
				return toolCallResponse(`{"title":"  ","key_findings":[],"limitations":[],"future_work":[]}`), nil
			}

			doc, err := newAnalyzer().AnalyzeText(ctx, "body text", "ref-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Title).To(Equal("Unknown Title"))
		})

		It("truncates oversized documents before prompting", func() {
			var sent string
			agent.chatFn = func(_ context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
				sent = req.Messages[len(req.Messages)-1].Content
				return toolCallResponse(`{"title":"T","key_findings":[],"limitations":[],"future_work":[]}`), nil
			}

			_, err := newAnalyzer().AnalyzeText(ctx, strings.Repeat("x", 20000), "ref-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(len(sent)).To(BeNumerically("<", 13000))
		})

		It("archives every analyzed document", func() {
			agent.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
				return toolCallResponse(`{"title":"T","key_findings":[],"limitations":[],"future_work":[]}`), nil
			}

			_, err := newAnalyzer().AnalyzeText(ctx, "body text", "ref-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(archive.saved).To(HaveLen(1))
			Expect(archive.saved[0].Ref).To(Equal("ref-1"))
		})
	})

	Describe("fallback extraction", func() {
		paper := `A Study of Retrieval Robustness Under Noise
Some Author, Some University

Introduction. We study retrieval.

Limitations. The approach cannot generalize to unseen domains without retraining on new corpora. Evaluation covers only English so conclusions about other languages remain speculative at best.

Conclusion. Future work should extend the benchmark to multilingual settings with adversarial perturbations.`

		It("scans sections when the agent call fails", func() {
			agent.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
				return nil, errors.New("model unavailable")
			}

			doc, err := newAnalyzer().AnalyzeText(ctx, paper, "ref-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Title).To(Equal("A Study of Retrieval Robustness Under Noise"))
			Expect(doc.Limitations).NotTo(BeEmpty())
			Expect(doc.Limitations[0]).To(ContainSubstring("cannot generalize"))
			Expect(doc.FutureWork).NotTo(BeEmpty())
			Expect(doc.FutureWork[0]).To(ContainSubstring("multilingual"))
		})

		It("falls back when the model returns no tool call", func() {
			agent.chatFn = func(_ context.Context, _ llm.AgentRequest) (*llm.AgentResponse, error) {
				return &llm.AgentResponse{Content: "I cannot analyze this", FinishReason: "stop"}, nil
			}

			doc, err := newAnalyzer().AnalyzeText(ctx, paper, "ref-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(doc).NotTo(BeNil())
		})

		It("falls back when no agent client is configured", func() {
			doc, err := analyzer.New(nil, fetcher, archive, nil).AnalyzeText(ctx, paper, "ref-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Title).To(Equal("A Study of Retrieval Robustness Under Noise"))
		})

		It("guesses a placeholder title for header-only text", func() {
			doc, err := analyzer.New(nil, fetcher, archive, nil).AnalyzeText(ctx, "ALL CAPS HEADER LINE ONLY HERE", "ref-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(doc.Title).To(Equal("Unknown Title"))
		})
	})

	Describe("error cases", func() {
		It("rejects empty text", func() {
			_, err := newAnalyzer().AnalyzeText(ctx, "   \n\t ", "ref-1")
			Expect(err).To(HaveOccurred())
		})

		It("propagates fetch failures", func() {
			fetcher.fetchFn = func(_ context.Context, _ string) (string, error) {
				return "", errors.New("connection refused")
			}

			_, err := newAnalyzer().Analyze(ctx, "https://example.org/paper")

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("connection refused"))
		})
	})
})
