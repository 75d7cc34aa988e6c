package model

import (
	"encoding/json"
	"time"
)

// TransactionType is the direction of a ledger record.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// TransactionSource records which operation appended a ledger record.
type TransactionSource string

const (
	SourceManual     TransactionSource = "manual"
	SourceDCA        TransactionSource = "dca"
	SourceAllocation TransactionSource = "allocation"
	SourceImport     TransactionSource = "import"
)

// Transaction is one immutable ledger record. Seq is the append order
// within the portfolio; replay filters on Date, never on Seq.
type Transaction struct {
	ID            string            `json:"id"`
	PortfolioID   string            `json:"portfolioId"`
	Seq           int64             `json:"seq"`
	Symbol        string            `json:"symbol"`
	Quantity      float64           `json:"quantity"`
	Date          time.Time         `json:"date"`
	Type          TransactionType   `json:"type"`
	CommissionFee float64           `json:"commissionFee"`
	Source        TransactionSource `json:"source"`
	CreatedAt     time.Time         `json:"createdAt,omitempty"`
}

// MarshalJSON writes Date as a calendar day.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(t), Date: FormatDate(t.Date)})
}

// TransactionResponse echoes a manual buy or sell together with the price
// it was checked against.
type TransactionResponse struct {
	Transaction Transaction `json:"transaction"`
	Price       float64     `json:"price"`
	Total       float64     `json:"total"`
}
