package zaiko

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wonny/yuutai/internal/contracts"
	"github.com/wonny/yuutai/pkg/httputil"
)

// FetchMonth downloads the raw inventory payload of a settlement month.
// The payload is returned verbatim, sentinel included.
func (c *Client) FetchMonth(ctx context.Context, month int) (contracts.RawPayload, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	resp, err := c.httpClient.PostForm(ctx, c.baseURL+monthlyPath, url.Values{
		"month": {strconv.Itoa(month)},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch month %d: %w", month, err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("fetch month %d: %w", month, err)
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("decode month %d: %w", month, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"month":   month,
		"records": len(payload),
	}).Info("Fetched monthly inventory")

	return payload, nil
}

// FetchMonths fetches months one after another; spacing comes from the http client.
// It stops at the first error and returns what was fetched so far.
func (c *Client) FetchMonths(ctx context.Context, months []int) (map[int]contracts.RawPayload, error) {
	out := make(map[int]contracts.RawPayload, len(months))
	for _, m := range months {
		payload, err := c.FetchMonth(ctx, m)
		if err != nil {
			return out, err
		}
		out[m] = payload
	}
	return out, nil
}

// FetchRealtime downloads the current inventory across all months
func (c *Client) FetchRealtime(ctx context.Context) (contracts.RawPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+realtimePath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create realtime request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", "ionic://localhost")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch realtime: %w", err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("fetch realtime: %w", err)
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("decode realtime: %w", err)
	}

	c.logger.WithField("records", len(payload)).Debug("Fetched realtime inventory")
	return payload, nil
}

// decodePayload keeps numbers as json.Number so large counts stay exact
func decodePayload(body []byte) (contracts.RawPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload contracts.RawPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = contracts.RawPayload{}
	}
	return payload, nil
}
