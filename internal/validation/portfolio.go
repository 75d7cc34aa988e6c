package validation

import (
	"fmt"

	"github.com/ndewijer/Stockbroker-Backend/internal/api/request"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// ValidateCreatePortfolio validates a portfolio creation request.
//
// Required fields:
//   - name: 1 to 100 characters
//
// Optional fields:
//   - kind: simple or flexible (defaults to flexible)
func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	validateName(errors, "name", req.Name)

	if req.Kind != "" && !model.PortfolioKind(req.Kind).Valid() {
		errors["kind"] = fmt.Sprintf("invalid kind: %s", req.Kind)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateInvest validates a fixed-amount investment request. The weight sum
// is checked by the allocator.
func ValidateInvest(req request.InvestRequest) error {
	errors := make(map[string]string)

	validateWeights(errors, req.Weights)
	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}
	if req.CommissionFee < 0 {
		errors["commissionFee"] = "commissionFee must not be negative"
	}
	validateDate(errors, "date", req.Date)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func validateWeights(errors map[string]string, weights []request.WeightRequest) {
	if len(weights) == 0 {
		errors["weights"] = "at least one weight is required"
		return
	}
	seen := make(map[string]struct{}, len(weights))
	for i, w := range weights {
		if w.Symbol == "" {
			errors["weights"] = fmt.Sprintf("weight %d has no symbol", i+1)
			return
		}
		if w.Weight < 0 {
			errors["weights"] = fmt.Sprintf("weight for %s must not be negative", w.Symbol)
			return
		}
		if _, ok := seen[w.Symbol]; ok {
			errors["weights"] = fmt.Sprintf("%s appears more than once", w.Symbol)
			return
		}
		seen[w.Symbol] = struct{}{}
	}
}
