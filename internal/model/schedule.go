package model

import (
	"encoding/json"
	"time"
)

// Weight is the share of an investment assigned to one symbol, in percent.
type Weight struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// Schedule is a dollar-cost averaging strategy bound 1:1 to the flexible
// portfolio of the same name. Only LastProcessedDate changes after creation.
type Schedule struct {
	ID                string     `json:"id"`
	PortfolioID       string     `json:"portfolioId"`
	Name              string     `json:"name"`
	Weights           []Weight   `json:"weights"`
	Amount            float64    `json:"amount"`
	CommissionFee     float64    `json:"commissionFee"`
	StartDate         time.Time  `json:"startDate"`
	EndDate           *time.Time `json:"endDate,omitempty"`
	FrequencyDays     int        `json:"frequencyDays"`
	LastProcessedDate time.Time  `json:"lastProcessedDate"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// MarshalJSON writes the schedule dates as calendar days.
func (s Schedule) MarshalJSON() ([]byte, error) {
	type alias Schedule
	out := struct {
		alias
		StartDate         string  `json:"startDate"`
		EndDate           *string `json:"endDate,omitempty"`
		LastProcessedDate string  `json:"lastProcessedDate"`
	}{
		alias:             alias(s),
		StartDate:         FormatDate(s.StartDate),
		LastProcessedDate: FormatDate(s.LastProcessedDate),
	}
	if s.EndDate != nil {
		end := FormatDate(*s.EndDate)
		out.EndDate = &end
	}
	return json.Marshal(out)
}
