package request

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// InvestRequest represents the request body for a fixed-amount investment
type InvestRequest struct {
	Weights       []WeightRequest `json:"weights"`
	Amount        float64         `json:"amount"`
	CommissionFee float64         `json:"commissionFee"`
	Date          string          `json:"date"`
}

// WeightRequest is one symbol's share of an amount, in percent.
type WeightRequest struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}
