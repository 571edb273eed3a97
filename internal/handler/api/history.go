package api

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"InlineRank/internal/domain/models"
	"InlineRank/internal/usecase"
	xhttp "InlineRank/pkg/http"
	xlogger "InlineRank/pkg/logger"
)

type HistoryReader interface {
	History(ctx context.Context, id int64) (*models.InstrumentHistory, error)
}

// HistoryHandler serves the single-instrument history view.
type HistoryHandler struct {
	logger *xlogger.Logger
	uc     HistoryReader
}

var _ xhttp.Handler = (*HistoryHandler)(nil)

func NewHistoryHandler(logger *xlogger.Logger, uc HistoryReader) *HistoryHandler {
	return &HistoryHandler{logger: logger, uc: uc}
}

func (h *HistoryHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/instruments/:id/history", h.History)
}

func (h *HistoryHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.uc.History(c.Request().Context(), req.ID)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Int64("id", req.ID), xlogger.Error(err))
		if errors.Is(err, usecase.ErrHistoryUnavailable) {
			return xhttp.AppErrorResponse(c, xhttp.UpstreamError(err))
		}
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}
