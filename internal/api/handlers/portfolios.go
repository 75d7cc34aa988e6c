package handlers

import (
	"context"
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

// PortfolioHandler handles HTTP requests for portfolio endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the portfolio and allocation services.
type PortfolioHandler struct {
	portfolioService  *service.PortfolioService
	allocationService *service.AllocationService
	now               func() time.Time
}

// NewPortfolioHandler creates a new PortfolioHandler. A nil now uses the
// system time for queries without a date.
func NewPortfolioHandler(
	portfolioService *service.PortfolioService,
	allocationService *service.AllocationService,
	now func() time.Time,
) *PortfolioHandler {
	if now == nil {
		now = time.Now
	}
	return &PortfolioHandler{
		portfolioService:  portfolioService,
		allocationService: allocationService,
		now:               now,
	}
}

// CompositionResponse lists the holdings of a portfolio on a date.
type CompositionResponse struct {
	Portfolio string          `json:"portfolio"`
	Date      string          `json:"date"`
	Holdings  []model.Holding `json:"holdings"`
}

// AmountResponse carries a single monetary figure of a portfolio on a date.
type AmountResponse struct {
	Portfolio string  `json:"portfolio"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
}

// Portfolios handles GET requests to list all portfolios.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with array of Portfolio
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.GetAllPortfolios(r.Context())
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolios)
		return
	}
	if portfolios == nil {
		portfolios = []model.Portfolio{}
	}
	response.RespondJSON(w, http.StatusOK, portfolios)
}

// CreatePortfolio handles POST requests to create an empty portfolio.
//
// Endpoint: POST /api/portfolio
// Request Body: CreatePortfolioRequest (name, kind)
// Response: 201 Created with Portfolio
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the name is taken
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateCreatePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(r.Context(), req.Name, model.PortfolioKind(req.Kind))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToCreatePortfolio)
		return
	}
	response.RespondJSON(w, http.StatusCreated, portfolio)
}

// GetPortfolio handles GET requests for a single portfolio's metadata.
//
// Endpoint: GET /api/portfolio/{name}
// Response: 200 OK with Portfolio
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePortfolio)
		return
	}
	response.RespondJSON(w, http.StatusOK, portfolio)
}

// Composition handles GET requests for the holdings on a date.
//
// Endpoint: GET /api/portfolio/{name}/composition?date=YYYY-MM-DD
// Response: 200 OK with CompositionResponse
// Error: 400 Bad Request if the date is invalid
// Error: 404 Not Found if the portfolio does not exist
func (h *PortfolioHandler) Composition(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	date, err := queryDate(r, h.now)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	holdings, err := h.portfolioService.Composition(r.Context(), name, date)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetComposition)
		return
	}
	if holdings == nil {
		holdings = []model.Holding{}
	}
	response.RespondJSON(w, http.StatusOK, CompositionResponse{
		Portfolio: name,
		Date:      model.FormatDate(date),
		Holdings:  holdings,
	})
}

// Value handles GET requests for the market value on a date.
//
// Endpoint: GET /api/portfolio/{name}/value?date=YYYY-MM-DD
// Response: 200 OK with AmountResponse
// Error: 404 Not Found if the portfolio does not exist
// Error: 422 Unprocessable Entity if a held symbol has no price on the date
func (h *PortfolioHandler) Value(w http.ResponseWriter, r *http.Request) {
	h.amount(w, r, h.portfolioService.Value, apperrors.ErrFailedToGetValue)
}

// CostBasis handles GET requests for the cost basis on a date.
//
// Endpoint: GET /api/portfolio/{name}/cost-basis?date=YYYY-MM-DD
// Response: 200 OK with AmountResponse
// Error: 404 Not Found if the portfolio does not exist
// Error: 422 Unprocessable Entity if a buy has no price on its date
func (h *PortfolioHandler) CostBasis(w http.ResponseWriter, r *http.Request) {
	h.amount(w, r, h.portfolioService.CostBasis, apperrors.ErrFailedToGetCostBasis)
}

func (h *PortfolioHandler) amount(
	w http.ResponseWriter,
	r *http.Request,
	get func(ctx context.Context, name string, date time.Time) (float64, error),
	fallback error,
) {
	name := chi.URLParam(r, "name")
	date, err := queryDate(r, h.now)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	amount, err := get(r.Context(), name, date)
	if err != nil {
		respondServiceError(w, err, fallback)
		return
	}
	response.RespondJSON(w, http.StatusOK, AmountResponse{
		Portfolio: name,
		Date:      model.FormatDate(date),
		Amount:    amount,
	})
}

// Summary handles GET requests for composition, value and cost basis on a date.
//
// Endpoint: GET /api/portfolio/{name}/summary?date=YYYY-MM-DD
// Response: 200 OK with PortfolioSummary
// Error: 404 Not Found if the portfolio does not exist
// Error: 422 Unprocessable Entity if a price is missing
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, h.now)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	summary, err := h.portfolioService.Summary(r.Context(), chi.URLParam(r, "name"), date)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToGetValue)
		return
	}
	if summary.Holdings == nil {
		summary.Holdings = []model.Holding{}
	}
	response.RespondJSON(w, http.StatusOK, summary)
}

// Invest handles POST requests to split a fixed amount across weighted symbols.
// Either every buy is appended or none is.
//
// Endpoint: POST /api/portfolio/{name}/invest
// Request Body: InvestRequest (weights, amount, commissionFee, date)
// Response: 201 Created with array of Transaction
// Error: 400 Bad Request if validation fails or the weights do not sum to 100
// Error: 404 Not Found if the portfolio does not exist
// Error: 422 Unprocessable Entity if a symbol has no price on the date
func (h *PortfolioHandler) Invest(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.InvestRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateInvest(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	txs, err := h.allocationService.Invest(r.Context(), chi.URLParam(r, "name"), service.InvestInput{
		Weights:       toWeights(req.Weights),
		Amount:        req.Amount,
		CommissionFee: req.CommissionFee,
		Date:          date,
	})
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToInvest)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	response.RespondJSON(w, http.StatusCreated, txs)
}
