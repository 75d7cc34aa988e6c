package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Stockbroker-Backend/internal/api/request"
	"github.com/ndewijer/Stockbroker-Backend/internal/api/response"
	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/service"
	"github.com/ndewijer/Stockbroker-Backend/internal/validation"
)

// StrategyHandler handles HTTP requests for dollar-cost averaging strategies.
type StrategyHandler struct {
	strategyService *service.StrategyService
}

// NewStrategyHandler creates a new StrategyHandler with the provided service dependency.
func NewStrategyHandler(strategyService *service.StrategyService) *StrategyHandler {
	return &StrategyHandler{
		strategyService: strategyService,
	}
}

// Strategies handles GET requests to list all DCA schedules.
//
// Endpoint: GET /api/strategy
// Response: 200 OK with array of Schedule
// Error: 500 Internal Server Error if retrieval fails
func (h *StrategyHandler) Strategies(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.strategyService.ListStrategies(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveStrategies)
		return
	}
	if schedules == nil {
		schedules = []model.Schedule{}
	}
	response.RespondJSON(w, http.StatusOK, schedules)
}

// GetStrategy handles GET requests for a single schedule.
//
// Endpoint: GET /api/strategy/{name}
// Response: 200 OK with Schedule
// Error: 404 Not Found if no schedule has the name
func (h *StrategyHandler) GetStrategy(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.strategyService.GetStrategy(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveStrategies)
		return
	}
	response.RespondJSON(w, http.StatusOK, schedule)
}

// CreateStrategy handles POST requests to create a DCA schedule and its
// flexible portfolio. A start date that is not in the future invests the
// first period immediately.
//
// Endpoint: POST /api/strategy
// Request Body: CreateStrategyRequest
// Response: 201 Created with Schedule
// Error: 400 Bad Request if validation fails or the weights do not sum to 100
// Error: 409 Conflict if a strategy with the name exists
// Error: 422 Unprocessable Entity if the first period cannot be priced
func (h *StrategyHandler) CreateStrategy(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateStrategyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateCreateStrategy(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid startDate", err.Error())
		return
	}
	var end *time.Time
	if req.EndDate != nil {
		d, err := model.ParseDate(*req.EndDate)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid endDate", err.Error())
			return
		}
		end = &d
	}

	schedule, err := h.strategyService.CreateStrategy(r.Context(), service.StrategyInput{
		Name:          req.Name,
		Weights:       toWeights(req.Weights),
		Amount:        req.Amount,
		CommissionFee: req.CommissionFee,
		StartDate:     start,
		EndDate:       end,
		FrequencyDays: req.FrequencyDays,
	})
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreateStrategy)
		return
	}
	response.RespondJSON(w, http.StatusCreated, schedule)
}
