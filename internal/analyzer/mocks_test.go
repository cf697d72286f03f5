package analyzer_test

import (
	"context"

	"frontier.app/frontier/common/llm"
	"frontier.app/frontier/internal/domain"
)

type mockAgentClient struct {
	chatFn func(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error)
}

func (m *mockAgentClient) ChatWithTools(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, req)
	}
	return &llm.AgentResponse{}, nil
}

func (m *mockAgentClient) Model() string {
	return "mock-model"
}

type mockFetcher struct {
	fetchFn func(ctx context.Context, url string) (string, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, url)
	}
	return "", nil
}

type mockArchiver struct {
	saved []*domain.Document
}

func (m *mockArchiver) SaveAnalyzed(_ context.Context, doc *domain.Document) {
	m.saved = append(m.saved, doc)
}

// toolCallResponse wraps tool arguments in a single-call agent response.
func toolCallResponse(args string) *llm.AgentResponse {
	return &llm.AgentResponse{
		ToolCalls:    []llm.ToolCall{{ID: "call-1", Name: "record_paper_analysis", Arguments: args}},
		FinishReason: "tool_calls",
	}
}
