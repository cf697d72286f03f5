package validator_test

import (
	"context"
	"encoding/json"

	"frontier.app/frontier/common/llm"
)

type mockLLMClient struct {
	chatFn func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
}

func (m *mockLLMClient) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, req, result)
	}
	return &llm.Response{}, nil
}

func (m *mockLLMClient) Model() string {
	return "mock-model"
}

// respondWith builds a chatFn that unmarshals fixed JSON into the result.
func respondWith(payload string) func(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	return func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
		if err := json.Unmarshal([]byte(payload), result); err != nil {
			return nil, err
		}
		return &llm.Response{}, nil
	}
}
