package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"FuelPricer/internal/domain/models"
	"FuelPricer/internal/pricing"
	"FuelPricer/internal/usecase"
	xhttp "FuelPricer/pkg/http"
	applogger "FuelPricer/pkg/logger"
)

// RecommendHandler exposes the pricing endpoints over HTTP.
type RecommendHandler struct {
	rec *usecase.Recommender
	l   *applogger.Logger
}

func NewRecommendHandler(rec *usecase.Recommender) *RecommendHandler {
	return &RecommendHandler{rec: rec}
}

// SetLogger injects a structured logger.
func (h *RecommendHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *RecommendHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/recommend", h.Recommend)
	e.GET("/api/rules", h.Rules)
	e.GET("/health", h.Health)
}

// Recommend prices one day from the posted decision context.
func (h *RecommendHandler) Recommend(c echo.Context) error {
	req := new(models.RecommendRequest)
	if verrs := xhttp.ReadAndValidateRequest(c, req); verrs != nil {
		if h.l != nil {
			h.l.Warn("recommend request rejected", applogger.Any("errors", verrs))
		}
		return xhttp.BadRequestResponse(c, verrs)
	}

	rec, err := h.rec.RecommendToday(c.Request().Context(), req)
	if err != nil {
		if h.l != nil {
			h.l.Error("recommend failed", applogger.String("date", req.Date), applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, h.appError(err))
	}
	return xhttp.SuccessResponse(c, rec)
}

// Rules returns the business constraints the engine prices under.
func (h *RecommendHandler) Rules(c echo.Context) error {
	rules := h.rec.Rules()
	return xhttp.SuccessResponse(c, map[string]float64{
		"min_price":             rules.MinPrice,
		"max_price":             rules.MaxPrice,
		"grid_step":             rules.GridStep,
		"max_abs_change":        rules.MaxAbsChange,
		"min_margin_per_liter":  rules.MinMarginPerLiter,
		"competitive_max_delta": rules.CompetitiveMaxDelta,
	})
}

// Health reports readiness: the service can only price once a history
// snapshot has been loaded.
func (h *RecommendHandler) Health(c echo.Context) error {
	if !h.rec.Ready() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RecommendHandler) appError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, pricing.ErrModelInference):
		return xhttp.UpstreamError("demand model inference failed")
	case errors.Is(err, pricing.ErrInsufficientHistory):
		return xhttp.InternalError("history snapshot not available")
	case errors.Is(err, pricing.ErrNoCandidates):
		return xhttp.InternalError("no feasible candidate prices")
	default:
		return xhttp.InternalError("recommendation failed").WithError(err)
	}
}
