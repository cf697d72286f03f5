package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"frontier.app/frontier/internal/http/dto"
	"frontier.app/frontier/internal/model"
	"frontier.app/frontier/internal/service"
	"frontier.app/frontier/internal/store"
)

type AnalysisHandler struct {
	service service.AnalysisService
}

func NewAnalysisHandler(service service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

func (h *AnalysisHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid analysis request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := service.CreateAnalysisParams{
		SeedURL:             req.SeedURL,
		SeedText:            req.SeedText,
		MaxPapers:           req.MaxPapers,
		ValidationThreshold: req.ValidationThreshold,
		Mode:                req.Mode,
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		traceID := spanCtx.TraceID().String()
		params.TraceID = &traceID
	}

	run, err := h.service.Create(ctx, params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "failed to create analysis run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create analysis"})
		return
	}

	c.JSON(http.StatusAccepted, dto.CreateAnalysisResponse{
		RunID:  run.ID,
		Status: string(run.Status),
	})
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseRunID(c)
	if !ok {
		return
	}

	run, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to fetch analysis run", "error", err, "run_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch analysis"})
		return
	}

	c.JSON(http.StatusOK, toRunResponse(run))
}

// Cancel stops a pending or running analysis. Finished runs cannot be
// cancelled.
func (h *AnalysisHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseRunID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(ctx, id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		case errors.Is(err, store.ErrAlreadyFinished):
			c.JSON(http.StatusBadRequest, gin.H{"error": "analysis already finished"})
		default:
			slog.ErrorContext(ctx, "failed to cancel analysis run", "error", err, "run_id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel analysis"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.CancelAnalysisResponse{
		RunID:  id,
		Status: "cancelled",
	})
}

// Result returns the stored response JSON once the run has finished.
func (h *AnalysisHandler) Result(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseRunID(c)
	if !ok {
		return
	}

	run, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to fetch analysis run", "error", err, "run_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch analysis"})
		return
	}

	if len(run.Result) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "result not available",
			"status": string(run.Status),
		})
		return
	}

	c.Data(http.StatusOK, "application/json", run.Result)
}

func (h *AnalysisHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	limit := int32(20)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = int32(parsed)
	}

	runs, err := h.service.List(ctx, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list analysis runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list analyses"})
		return
	}

	resp := dto.ListAnalysesResponse{Runs: make([]dto.AnalysisRunResponse, 0, len(runs))}
	for i := range runs {
		resp.Runs = append(resp.Runs, toRunResponse(&runs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Documents returns the archived document summaries for a run.
func (h *AnalysisHandler) Documents(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseRunID(c)
	if !ok {
		return
	}

	docs, err := h.service.Documents(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to list archived documents", "error", err, "run_id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}

	resp := dto.ListDocumentsResponse{RunID: id, Documents: make([]dto.ArchivedDocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, dto.ArchivedDocumentResponse{
			Ref:         doc.Ref,
			Title:       doc.Title,
			KeyFindings: doc.KeyFindings,
			Limitations: doc.Limitations,
			FutureWork:  doc.FutureWork,
			AnalyzedAt:  doc.AnalyzedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func parseRunID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis id"})
		return 0, false
	}
	return id, true
}

func toRunResponse(run *model.AnalysisRun) dto.AnalysisRunResponse {
	return dto.AnalysisRunResponse{
		RunID:               run.ID,
		Status:              string(run.Status),
		Mode:                run.Mode,
		SeedURL:             run.SeedURL,
		MaxPapers:           run.MaxPapers,
		ValidationThreshold: run.ValidationThreshold,
		Attempt:             run.Attempt,
		Error:               run.Error,
		CreatedAt:           run.CreatedAt,
		StartedAt:           run.StartedAt,
		FinishedAt:          run.FinishedAt,
	}
}
