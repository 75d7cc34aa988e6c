package validation

import (
	"github.com/ndewijer/Stockbroker-Backend/internal/api/request"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// ValidateCreateStrategy validates a DCA strategy creation request.
//
// Required fields:
//   - name: 1 to 100 characters
//   - weights: at least one, each with a symbol and a non-negative weight
//   - amount: Must be positive
//   - startDate: Must be in YYYY-MM-DD format
//   - frequencyDays: Must be positive
//
// Optional fields:
//   - commissionFee: Must not be negative
//   - endDate: YYYY-MM-DD, not before startDate
func ValidateCreateStrategy(req request.CreateStrategyRequest) error {
	errors := make(map[string]string)

	validateName(errors, "name", req.Name)
	validateWeights(errors, req.Weights)

	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}
	if req.CommissionFee < 0 {
		errors["commissionFee"] = "commissionFee must not be negative"
	}
	if req.FrequencyDays <= 0 {
		errors["frequencyDays"] = "frequencyDays must be positive"
	}

	validateDate(errors, "startDate", req.StartDate)
	if req.EndDate != nil {
		validateDate(errors, "endDate", *req.EndDate)
		_, startErr := errors["startDate"]
		_, endErr := errors["endDate"]
		if !startErr && !endErr {
			start, _ := model.ParseDate(req.StartDate)
			end, _ := model.ParseDate(*req.EndDate)
			if end.Before(start) {
				errors["endDate"] = "endDate must not be before startDate"
			}
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
