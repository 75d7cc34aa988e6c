package request

// CreateTransactionRequest represents the request body for a manual buy or sell
type CreateTransactionRequest struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	CommissionFee float64 `json:"commissionFee"`
}
