package model

// PerformancePoint is one sampled valuation. Level is the value expressed
// in units of the performance scale.
type PerformancePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Level int     `json:"level"`
}

// Performance is a coarse value trend of a portfolio between two dates.
// Flat is set when every sample has the same value.
type Performance struct {
	Portfolio string             `json:"portfolio"`
	Start     string             `json:"start"`
	End       string             `json:"end"`
	Points    []PerformancePoint `json:"points"`
	Scale     int                `json:"scale"`
	Flat      bool               `json:"flat"`
}
