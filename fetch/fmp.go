package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dnldd/papertrade/shared"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the FMP API base url.
	BaseURL = "https://financialmodelingprep.com/stable"

	// API paths.
	quotePath       = "/quote-short"
	dailyClosesPath = "/historical-price-eod/full"

	// requestTimeout is the http client timeout for all requests.
	requestTimeout = time.Second * 5
)

// FMPConfig represents the configuration for the FMP client.
type FMPConfig struct {
	// APIkey is the FMP API Key.
	APIKey string
	// BaseURL is the FMP API base url.
	BaseURL string
}

// FMPClient represents the Financial Modeling Preparation (FMP) API client.
type FMPClient struct {
	cfg   *FMPConfig
	httpc http.Client
	buf   *bytes.Buffer
}

// Ensure the FMPClient implements the MarketFetcher interface.
var _ shared.MarketFetcher = (*FMPClient)(nil)

// NewFMPClient instantiates a new FMP client.
func NewFMPClient(cfg *FMPConfig) *FMPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return &FMPClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: requestTimeout},
		buf:   bytes.NewBuffer(make([]byte, 0, 512)),
	}
}

// formURL creates full urls including parameters for the api.
func (c *FMPClient) formURL(path string, params string) string {
	c.buf.WriteString(c.cfg.BaseURL)
	c.buf.WriteString(path)
	c.buf.WriteString("?")
	c.buf.WriteString(params)
	url := c.buf.String()
	c.buf.Reset()

	return url
}

// fetch executes the provided request and returns the response body.
func (c *FMPClient) fetch(ctx context.Context, formedURL string, desc string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", desc, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", shared.ErrExternalService, desc, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching %s: unexpected status %d",
			shared.ErrExternalService, desc, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response body: %v", shared.ErrExternalService, desc, err)
	}

	return body, nil
}

// ParseDailyCloses parses end-of-day closes from the provided json data. FMP
// returns the most recent day first, the returned closes are ascending by date.
func (c *FMPClient) ParseDailyCloses(data []gjson.Result) ([]float64, error) {
	closes := make([]float64, 0, len(data))

	for idx := len(data) - 1; idx >= 0; idx-- {
		if !data[idx].Get("close").Exists() {
			return nil, fmt.Errorf("%w: daily close entry missing close field", shared.ErrDataUnavailable)
		}

		closes = append(closes, data[idx].Get("close").Float())
	}

	return closes, nil
}

// FetchQuote fetches the current price for the provided symbol.
func (c *FMPClient) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	if symbol == "" {
		return 0, fmt.Errorf("%w: symbol cannot be an empty string", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("apikey", c.cfg.APIKey)

	body, err := c.fetch(ctx, c.formURL(quotePath, params.Encode()), "quote")
	if err != nil {
		return 0, err
	}

	data := gjson.ParseBytes(body).Array()
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: no quote for %s", shared.ErrDataUnavailable, symbol)
	}

	price := data[0].Get("price").Float()
	if price <= 0 {
		return 0, fmt.Errorf("%w: no usable quote price for %s", shared.ErrDataUnavailable, symbol)
	}

	return price, nil
}

// FetchDailyCloses fetches end-of-day closes for the provided symbol covering
// up to the provided lookback in days, ascending by date.
func (c *FMPClient) FetchDailyCloses(ctx context.Context, symbol string, lookbackDays int) ([]float64, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol cannot be an empty string", shared.ErrInvalidInput)
	}
	if lookbackDays <= 0 {
		return nil, fmt.Errorf("%w: lookback days must be positive, got %d", shared.ErrInvalidInput, lookbackDays)
	}

	now, _, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("apikey", c.cfg.APIKey)
	params.Add("from", now.AddDate(0, 0, -lookbackDays).Format(shared.DayLayout))
	params.Add("to", now.Format(shared.DayLayout))

	body, err := c.fetch(ctx, c.formURL(dailyClosesPath, params.Encode()), "daily closes")
	if err != nil {
		return nil, err
	}

	data := gjson.ParseBytes(body).Array()
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no daily closes for %s", shared.ErrDataUnavailable, symbol)
	}

	return c.ParseDailyCloses(data)
}
