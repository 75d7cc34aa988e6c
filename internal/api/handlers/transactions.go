package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Stockbroker-Backend/internal/api/request"
	"github.com/ndewijer/Stockbroker-Backend/internal/api/response"
	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/service"
	"github.com/ndewijer/Stockbroker-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Transactions handles GET requests to retrieve a portfolio's ledger in append order.
//
// Endpoint: GET /api/portfolio/{name}/transactions
// Response: 200 OK with array of Transaction
// Error: 404 Not Found if the portfolio does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactionService.GetTransactions(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	response.RespondJSON(w, http.StatusOK, txs)
}

// CreateTransaction handles POST requests to record a manual buy or sell.
//
// Endpoint: POST /api/portfolio/{name}/transactions
// Request Body: CreateTransactionRequest (symbol, quantity, date, type, commissionFee)
// Response: 201 Created with TransactionResponse
// Error: 400 Bad Request if validation fails or the symbol is unknown
// Error: 404 Not Found if the portfolio does not exist
// Error: 409 Conflict if a later sell of the symbol exists
// Error: 422 Unprocessable Entity if the quantity is not held or no price exists
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	resp, err := h.transactionService.RecordTransaction(r.Context(), chi.URLParam(r, "name"), service.TransactionInput{
		Symbol:        req.Symbol,
		Quantity:      req.Quantity,
		Date:          date,
		Type:          model.TransactionType(req.Type),
		CommissionFee: req.CommissionFee,
	})
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRecordTransaction)
		return
	}
	response.RespondJSON(w, http.StatusCreated, resp)
}
