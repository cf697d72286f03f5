package handler_test

import (
	"context"

	"frontier.app/frontier/common/arangodb"
	"frontier.app/frontier/internal/model"
	"frontier.app/frontier/internal/service"
)

type mockAnalysisService struct {
	createFn    func(ctx context.Context, params service.CreateAnalysisParams) (*model.AnalysisRun, error)
	getFn       func(ctx context.Context, id int64) (*model.AnalysisRun, error)
	listFn      func(ctx context.Context, limit int32) ([]model.AnalysisRun, error)
	cancelFn    func(ctx context.Context, id int64) error
	documentsFn func(ctx context.Context, id int64) ([]arangodb.DocumentSummary, error)
}

func (m *mockAnalysisService) Create(ctx context.Context, params service.CreateAnalysisParams) (*model.AnalysisRun, error) {
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return &model.AnalysisRun{ID: 1, Status: model.RunStatusPending}, nil
}

func (m *mockAnalysisService) Get(ctx context.Context, id int64) (*model.AnalysisRun, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &model.AnalysisRun{ID: id, Status: model.RunStatusPending}, nil
}

func (m *mockAnalysisService) List(ctx context.Context, limit int32) ([]model.AnalysisRun, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockAnalysisService) Cancel(ctx context.Context, id int64) error {
	if m.cancelFn != nil {
		return m.cancelFn(ctx, id)
	}
	return nil
}

func (m *mockAnalysisService) Documents(ctx context.Context, id int64) ([]arangodb.DocumentSummary, error) {
	if m.documentsFn != nil {
		return m.documentsFn(ctx, id)
	}
	return nil, nil
}
