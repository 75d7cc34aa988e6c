package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Stockbroker-Backend/internal/api/request"
	"github.com/ndewijer/Stockbroker-Backend/internal/api/response"
	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/chart"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/service"
	"github.com/ndewijer/Stockbroker-Backend/internal/validation"
)

// PerformanceHandler serves sampled portfolio values over a date range.
type PerformanceHandler struct {
	performanceService *service.PerformanceService
}

// NewPerformanceHandler creates a new PerformanceHandler with the provided service dependency.
func NewPerformanceHandler(performanceService *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{
		performanceService: performanceService,
	}
}

// Performance handles GET requests for the sampled market value of a portfolio.
//
// Endpoint: GET /api/portfolio/{name}/performance?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
// Response: 200 OK with Performance
// Error: 400 Bad Request if the range is missing, invalid or shorter than five days
// Error: 404 Not Found if the portfolio does not exist
// Error: 422 Unprocessable Entity if a sample cannot be priced
func (h *PerformanceHandler) Performance(w http.ResponseWriter, r *http.Request) {
	perf, ok := h.load(w, r)
	if !ok {
		return
	}
	response.RespondJSON(w, http.StatusOK, perf)
}

// Chart handles GET requests for the performance as a PNG bar chart.
//
// Endpoint: GET /api/portfolio/{name}/performance/chart?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
// Response: 200 OK with image/png
// Error: same as Performance
// Error: 422 Unprocessable Entity if the range produced no samples
func (h *PerformanceHandler) Chart(w http.ResponseWriter, r *http.Request) {
	perf, ok := h.load(w, r)
	if !ok {
		return
	}

	img, err := chart.RenderPerformance(perf)
	if err != nil {
		if errors.Is(err, chart.ErrNoPoints) {
			response.RespondError(w, http.StatusUnprocessableEntity, err.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRenderChart.Error(), err.Error())
		return
	}
	response.RespondPNG(w, img)
}

func (h *PerformanceHandler) load(w http.ResponseWriter, r *http.Request) (model.Performance, bool) {
	start, end, err := parseRange(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return model.Performance{}, false
	}

	perf, err := h.performanceService.Performance(r.Context(), chi.URLParam(r, "name"), start, end)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetPerformance)
		return model.Performance{}, false
	}
	return perf, true
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	start, end, err := request.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := validation.ValidateDateRange(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
