package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"InlineRank/internal/domain/models"
	"InlineRank/internal/export"
	"InlineRank/internal/services/analytics"
	"InlineRank/internal/usecase"
	xhttp "InlineRank/pkg/http"
	xlogger "InlineRank/pkg/logger"
)

// Ranker is the part of the ranking use case the handlers need.
type Ranker interface {
	Rank(ctx context.Context, q usecase.RankQuery) (*models.Ranking, error)
}

// RankingsHandler serves ranked batches as JSON and CSV plus the metric catalog.
type RankingsHandler struct {
	logger *xlogger.Logger
	ranker Ranker
}

var _ xhttp.Handler = (*RankingsHandler)(nil)

func NewRankingsHandler(logger *xlogger.Logger, ranker Ranker) *RankingsHandler {
	return &RankingsHandler{logger: logger, ranker: ranker}
}

func (h *RankingsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/rankings", h.Rankings)
	g.GET("/rankings/export.csv", h.ExportCSV)
	g.GET("/metrics/catalog", h.Catalog)
}

type rankingData struct {
	xhttp.ListDataResponse
	BatchID  string             `json:"batch_id"`
	Excluded []models.Exclusion `json:"excluded"`
}

func (h *RankingsHandler) Rankings(c echo.Context) error {
	q, verr := bindRankQuery(c)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.ranker.Rank(c.Request().Context(), q)
	if err != nil {
		h.logger.Error("ranking usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError(err))
	}
	excluded := r.Excluded
	if excluded == nil {
		excluded = []models.Exclusion{}
	}
	return xhttp.SuccessResponse(c, &rankingData{
		ListDataResponse: xhttp.ListDataResponse{Rows: r.Rows, Total: int64(len(r.Rows))},
		BatchID:          r.BatchID,
		Excluded:         excluded,
	})
}

func (h *RankingsHandler) ExportCSV(c echo.Context) error {
	q, verr := bindRankQuery(c)
	if verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.ranker.Rank(c.Request().Context(), q)
	if err != nil {
		h.logger.Error("ranking export error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UpstreamError(err))
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="inline-warrants-`+r.BatchID+`.csv"`)
	res.Header().Set("X-Batch-Id", r.BatchID)
	res.WriteHeader(http.StatusOK)
	return export.WriteCSV(res, r.Rows)
}

func (h *RankingsHandler) Catalog(c echo.Context) error {
	cat := analytics.Catalog()
	return xhttp.ListResponse(c, cat, int64(len(cat)))
}

// bindRankQuery binds, defaults and validates the ranking query parameters.
func bindRankQuery(c echo.Context) (usecase.RankQuery, []xhttp.ValidationError) {
	req := &models.RankingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return usecase.RankQuery{}, verr
	}
	q, err := usecase.ParseRankingRequest(*req)
	if err != nil {
		field := "calc_date"
		if errors.Is(err, usecase.ErrUnknownSortKey) {
			field = "sort"
		}
		return usecase.RankQuery{}, []xhttp.ValidationError{{Code: "ERR_BAD_REQUEST", Field: field, Message: err.Error()}}
	}
	return q, nil
}
