package model

import "time"

// PricePoint is the closing price of a symbol on one calendar day.
type PricePoint struct {
	Symbol string
	Date   time.Time
	Close  float64
}

// Symbol is one entry of the stock listing used to reject unknown symbols.
type Symbol struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Exchange  string `json:"exchange"`
	AssetType string `json:"assetType"`
	Status    string `json:"status"`
}
