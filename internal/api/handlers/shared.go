package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/api/request"
	"github.com/ndewijer/Stockbroker-Backend/internal/api/response"
	"github.com/ndewijer/Stockbroker-Backend/internal/apperrors"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
	"github.com/ndewijer/Stockbroker-Backend/internal/validation"
)

// parseJSON decodes the request body into T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if r.Body == nil {
		return req, errors.New("request body is empty")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decode request body: %w", err)
	}
	return req, nil
}

// queryDate reads the optional ?date= parameter, defaulting to today.
func queryDate(r *http.Request, now func() time.Time) (time.Time, error) {
	return request.ParseQueryDate(r.URL.Query().Get("date"), now())
}

// statusFor maps a service error onto an HTTP status code. Typed errors are
// matched through their sentinel, so the check order only matters for
// errors that wrap more than one.
func statusFor(err error) int {
	var verr *validation.Error
	switch {
	case errors.Is(err, apperrors.ErrPriceUnavailable),
		errors.Is(err, apperrors.ErrInsufficientQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrFutureSellConflict),
		errors.Is(err, apperrors.ErrDuplicatePortfolio),
		errors.Is(err, apperrors.ErrDuplicateSchedule),
		errors.Is(err, apperrors.ErrStaleSchedule):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrScheduleNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnsupportedOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrInvalidWeights),
		errors.Is(err, apperrors.ErrUnknownSymbol),
		errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrInvalidQuantity),
		errors.Is(err, apperrors.ErrInvalidCommission),
		errors.Is(err, apperrors.ErrInvalidFrequency),
		errors.Is(err, apperrors.ErrInvalidName),
		errors.Is(err, apperrors.ErrInvalidKind),
		errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the status from statusFor. Client
// errors carry the error text as the message; server errors use fallback
// and put the cause in the details.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		response.RespondError(w, status, fallback.Error(), err.Error())
		return
	}
	response.RespondError(w, status, err.Error(), nil)
}

func toWeights(in []request.WeightRequest) []model.Weight {
	out := make([]model.Weight, 0, len(in))
	for _, w := range in {
		out = append(out, model.Weight{Symbol: w.Symbol, Weight: w.Weight})
	}
	return out
}
