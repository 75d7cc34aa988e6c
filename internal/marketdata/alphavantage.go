package marketdata

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// DefaultAlphaVantageURL is the Alpha Vantage query endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

// AlphaVantageClient reads TIME_SERIES_DAILY and LISTING_STATUS in CSV form.
type AlphaVantageClient struct {
	clientConfig
	apiKey string
}

// NewAlphaVantageClient creates a new Alpha Vantage client
func NewAlphaVantageClient(apiKey string, opts ...ClientOption) *AlphaVantageClient {
	return &AlphaVantageClient{
		clientConfig: newClientConfig(DefaultAlphaVantageURL, opts),
		apiKey:       apiKey,
	}
}

func (c *AlphaVantageClient) Name() string { return "alphavantage" }

// DailySeries fetches the full daily history of symbol.
func (c *AlphaVantageClient) DailySeries(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")

	records, err := c.getCSV(ctx, params)
	if err != nil {
		if errors.Is(err, ErrSymbolNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, err
	}
	return parseDailyCSV(symbol, records)
}

// Listing fetches the active stock listing.
func (c *AlphaVantageClient) Listing(ctx context.Context) ([]model.Symbol, error) {
	params := url.Values{}
	params.Set("function", "LISTING_STATUS")

	records, err := c.getCSV(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseListingCSV(records)
}

// getCSV performs a rate-limited GET request and parses the CSV body.
// Alpha Vantage answers errors and quota notes with a JSON object even when
// CSV is requested.
func (c *AlphaVantageClient) getCSV(ctx context.Context, params url.Values) ([][]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params.Set("datatype", "csv")
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", params.Get("function")).Str("symbol", params.Get("symbol")).Msg("Alpha Vantage request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: c.Name(), StatusCode: resp.StatusCode, Message: string(body)}
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		return nil, parseAlphaVantageMessage(trimmed)
	}

	records, err := csv.NewReader(bytes.NewReader(trimmed)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv response: %w", err)
	}
	return records, nil
}

func parseAlphaVantageMessage(body []byte) error {
	var msg map[string]string
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unexpected alphavantage response: %w", err)
	}
	if m, ok := msg["Error Message"]; ok {
		return fmt.Errorf("%w: %s", ErrSymbolNotFound, m)
	}
	if m, ok := msg["Note"]; ok {
		return fmt.Errorf("%w: %s", ErrRateLimited, m)
	}
	if m, ok := msg["Information"]; ok {
		return fmt.Errorf("%w: %s", ErrRateLimited, m)
	}
	return fmt.Errorf("unexpected alphavantage response: %s", string(body))
}

// parseDailyCSV reads rows of timestamp,open,high,low,close,volume.
func parseDailyCSV(symbol string, records [][]string) ([]model.PricePoint, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols := columnIndex(records[0])
	dateCol, ok := cols["timestamp"]
	if !ok {
		return nil, fmt.Errorf("daily csv: missing timestamp column")
	}
	closeCol, ok := cols["close"]
	if !ok {
		return nil, fmt.Errorf("daily csv: missing close column")
	}

	points := make([]model.PricePoint, 0, len(records)-1)
	for i, row := range records[1:] {
		if len(row) <= closeCol || len(row) <= dateCol {
			return nil, fmt.Errorf("daily csv row %d: too few columns", i+2)
		}
		day, err := model.ParseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("daily csv row %d: %w", i+2, err)
		}
		closePrice, err := strconv.ParseFloat(row[closeCol], 64)
		if err != nil {
			return nil, fmt.Errorf("daily csv row %d: invalid close: %w", i+2, err)
		}
		points = append(points, model.PricePoint{Symbol: symbol, Date: day, Close: closePrice})
	}
	return points, nil
}

// parseListingCSV reads rows of symbol,name,exchange,assetType,ipoDate,delistingDate,status.
func parseListingCSV(records [][]string) ([]model.Symbol, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols := columnIndex(records[0])
	symbolCol, ok := cols["symbol"]
	if !ok {
		return nil, fmt.Errorf("listing csv: missing symbol column")
	}

	get := func(row []string, name string) string {
		if i, ok := cols[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	symbols := make([]model.Symbol, 0, len(records)-1)
	for _, row := range records[1:] {
		if symbolCol >= len(row) || row[symbolCol] == "" {
			continue
		}
		symbols = append(symbols, model.Symbol{
			Symbol:    row[symbolCol],
			Name:      get(row, "name"),
			Exchange:  get(row, "exchange"),
			AssetType: get(row, "assettype"),
			Status:    get(row, "status"),
		})
	}
	return symbols, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}
