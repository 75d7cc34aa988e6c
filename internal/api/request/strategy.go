package request

// CreateStrategyRequest represents the request body for creating a DCA strategy.
// EndDate is optional; a strategy without one runs indefinitely.
type CreateStrategyRequest struct {
	Name          string          `json:"name"`
	Weights       []WeightRequest `json:"weights"`
	Amount        float64         `json:"amount"`
	CommissionFee float64         `json:"commissionFee"`
	StartDate     string          `json:"startDate"`
	EndDate       *string         `json:"endDate,omitempty"`
	FrequencyDays int             `json:"frequencyDays"`
}
