package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

// DefaultYahooURL is the Yahoo Finance chart endpoint.
const DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooClient fetches daily closes from the Yahoo Finance chart API.
type YahooClient struct {
	clientConfig
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(opts ...ClientOption) *YahooClient {
	return &YahooClient{clientConfig: newClientConfig(DefaultYahooURL, opts)}
}

func (c *YahooClient) Name() string { return "yahoo" }

// yahooResponse maps the Yahoo Finance chart API response. Close values are
// pointers because Yahoo reports null for days without a quote.
type yahooResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailySeries fetches the full daily history of symbol.
func (c *YahooClient) DailySeries(ctx context.Context, symbol string) ([]model.PricePoint, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s?interval=1d&range=max", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("symbol", symbol).Msg("Yahoo Finance request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, string(data))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: c.Name(), StatusCode: resp.StatusCode, Message: string(data)}
	}

	var response yahooResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, response.Chart.Error.Description)
	}

	return parseYahooChart(symbol, response)
}

// Listing is not offered by the chart API.
func (c *YahooClient) Listing(context.Context) ([]model.Symbol, error) {
	return nil, ErrListingUnsupported
}

func parseYahooChart(symbol string, response yahooResponse) ([]model.PricePoint, error) {
	if len(response.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	result := response.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no close prices returned")
	}
	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("mismatched data lengths")
	}

	points := make([]model.PricePoint, 0, len(closes))
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			continue
		}
		points = append(points, model.PricePoint{
			Symbol: symbol,
			Date:   model.Day(time.Unix(ts, 0)),
			Close:  *closes[i],
		})
	}
	return points, nil
}
