package model

import "time"

// PortfolioKind selects the bookkeeping rules applied to a portfolio ledger.
type PortfolioKind string

const (
	// KindSimple is a fixed basket: buys only, no commission, every record
	// counts regardless of the as-of date.
	KindSimple PortfolioKind = "simple"
	// KindFlexible supports dated buys and sells with commission fees and
	// may own a dollar-cost averaging schedule.
	KindFlexible PortfolioKind = "flexible"
)

// Valid reports whether k is a known portfolio kind.
func (k PortfolioKind) Valid() bool {
	return k == KindSimple || k == KindFlexible
}

// Portfolio represents a portfolio from the database
type Portfolio struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Kind      PortfolioKind `json:"kind"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Holding is the net quantity of one symbol at a point in time.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// PortfolioSummary combines composition, market value and cost basis of a
// portfolio on one date. Monetary values are rounded to two decimal places.
type PortfolioSummary struct {
	Portfolio Portfolio `json:"portfolio"`
	Date      string    `json:"date"`
	Holdings  []Holding `json:"holdings"`
	Value     float64   `json:"value"`
	CostBasis float64   `json:"costBasis"`
	GainLoss  float64   `json:"gainLoss"`
}
