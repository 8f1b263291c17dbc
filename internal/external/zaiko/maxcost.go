package zaiko

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/yuutai/pkg/httputil"
)

// 逆日歩最大額:1,200円 (full-width colon too)
var maxCostPattern = regexp.MustCompile(`逆日歩最大額\s*[：:]\s*([\d,]+)\s*円`)

// FetchMaxCost reads the largest historical carrying cost of one security.
// found is false when the page carries no figure.
func (c *Client) FetchMaxCost(ctx context.Context, code string) (cost int64, found bool, err error) {
	pageURL := fmt.Sprintf("%s/%syutai/", c.baseURL, url.PathEscape(code))

	resp, err := c.httpClient.Get(ctx, pageURL)
	if err != nil {
		return 0, false, fmt.Errorf("fetch max cost page %s: %w", code, err)
	}

	body, err := httputil.ReadBody(resp)
	if err != nil {
		return 0, false, fmt.Errorf("fetch max cost page %s: %w", code, err)
	}

	cost, found, err = parseMaxCost(string(body))
	if err != nil {
		return 0, false, fmt.Errorf("parse max cost page %s: %w", code, err)
	}
	return cost, found, nil
}

// parseMaxCost scans the page text; the largest figure wins
func parseMaxCost(html string) (int64, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, false, err
	}

	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	var best int64
	found := false
	for _, m := range maxCostPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
		if err != nil {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best, found, nil
}

// FetchMaxCosts looks up every code. A nil value records "looked up, nothing found".
// Codes that failed are left out so the next run retries them.
func (c *Client) FetchMaxCosts(ctx context.Context, codes []string) (map[string]*int64, error) {
	out := make(map[string]*int64, len(codes))
	failed := 0

	for i, code := range codes {
		cost, found, err := c.FetchMaxCost(ctx, code)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return out, ctx.Err()
			}
			failed++
			c.logger.WithField("code", code).WithError(err).Warn("Max cost lookup failed")
			continue
		}

		if found {
			v := cost
			out[code] = &v
		} else {
			out[code] = nil
		}

		if (i+1)%50 == 0 {
			c.logger.WithFields(map[string]interface{}{
				"done":  i + 1,
				"total": len(codes),
			}).Info("Max cost lookup progress")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"total":  len(codes),
		"found":  countFound(out),
		"failed": failed,
	}).Info("Max cost lookup completed")

	return out, nil
}

func countFound(m map[string]*int64) int {
	n := 0
	for _, v := range m {
		if v != nil {
			n++
		}
	}
	return n
}
