package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/wonny/yuutai/pkg/httputil"
	"github.com/wonny/yuutai/pkg/logger"
)

// ErrNoQuote means the chart carried no usable market price
var ErrNoQuote = errors.New("no quote")

// Client reads live prices from the Yahoo Finance chart API
// ⭐ SSOT: 실시간 시세 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	suffix     string // exchange suffix, ".T" for Tokyo
}

// NewClient creates a new quote client
func NewClient(httpClient *httputil.Client, baseURL, suffix string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &Client{
		httpClient: httpClient.WithHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
		logger:     log.WithModule("yahoo"),
		baseURL:    baseURL,
		suffix:     suffix,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote returns the regular market price of a security code
func (c *Client) Quote(ctx context.Context, code string) (float64, error) {
	symbol := code + c.suffix
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return 0, fmt.Errorf("quote %s: %w", symbol, err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return 0, fmt.Errorf("quote %s: %w", symbol, err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return 0, fmt.Errorf("decode quote %s: %w", symbol, err)
	}

	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("quote %s: %s: %w", symbol, chart.Chart.Error.Description, ErrNoQuote)
	}
	if len(chart.Chart.Result) == 0 || chart.Chart.Result[0].Meta.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("quote %s: %w", symbol, ErrNoQuote)
	}

	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	c.logger.WithFields(map[string]interface{}{
		"code":  code,
		"price": price,
	}).Debug("Fetched quote")

	return price, nil
}
