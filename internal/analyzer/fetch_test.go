package analyzer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"frontier.app/frontier/internal/analyzer"
)

var _ = Describe("HTTPFetcher", func() {
	var (
		ctx     context.Context
		fetcher analyzer.Fetcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		fetcher = analyzer.NewHTTPFetcher()
	})

	It("strips markup from html documents", func() {
		page := `<html><head>
			<style>body { color: red; }</style>
			<script>alert("nope");</script>
		</head><body>
			<h1>Paper Title</h1>
			<p>This abstract describes the method in enough detail to pass the minimum length check for fetched documents.</p>
		</body></html>`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(page))
		}))
		defer server.Close()

		text, err := fetcher.Fetch(ctx, server.URL)

		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("Paper Title"))
		Expect(text).To(ContainSubstring("This abstract describes the method"))
		Expect(text).NotTo(ContainSubstring("alert"))
		Expect(text).NotTo(ContainSubstring("color: red"))
	})

	It("collapses runs of whitespace", func() {
		body := "several    words\n\n\tseparated by   noise " + strings.Repeat("padding ", 20)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		defer server.Close()

		text, err := fetcher.Fetch(ctx, server.URL)

		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(ContainSubstring("several words separated by noise"))
	})

	It("rewrites arxiv pdf links to the abstract page", func() {
		var gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_, _ = w.Write([]byte(strings.Repeat("abstract text ", 20)))
		}))
		defer server.Close()

		_, err := fetcher.Fetch(ctx, server.URL+"/arxiv.org/pdf/2401.12345.pdf")

		Expect(err).NotTo(HaveOccurred())
		Expect(gotPath).To(Equal("/arxiv.org/abs/2401.12345"))
	})

	It("rejects non-200 responses", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := fetcher.Fetch(ctx, server.URL)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("status 404"))
	})

	It("rejects documents with no substantial text", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("too short"))
		}))
		defer server.Close()

		_, err := fetcher.Fetch(ctx, server.URL)

		Expect(err).To(HaveOccurred())
	})
})
