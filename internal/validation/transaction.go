package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Stockbroker-Backend/internal/api/request"
	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	string(model.TransactionBuy): true, string(model.TransactionSell): true,
}

// ValidateCreateTransaction validates a manual buy or sell.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - symbol: non-empty
//   - quantity: Must be positive
//   - date: Must be in YYYY-MM-DD format
//   - type: Must be one of: buy, sell
//
// Optional fields:
//   - commissionFee: Must not be negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if req.Quantity <= 0.0 {
		errors["quantity"] = "quantity must be positive"
	}

	validateDate(errors, "date", req.Date)

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.CommissionFee < 0 {
		errors["commissionFee"] = "commissionFee must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
