package finance

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// ResolveSymbol returns the first ticker symbol the search endpoint reports
// for company. A missing match or a malformed response yields "" with a nil
// error; only transport failures are returned as errors.
func (c *Client) ResolveSymbol(ctx context.Context, company string) (string, error) {
	query := url.Values{}
	query.Set("q", company)
	if c.country != "" {
		query.Set("country", c.country)
	}

	_, body, err := c.get(ctx, "search", c.searchURL, query)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		c.debug("search response is not valid JSON", map[string]any{"company": company})
		return "", nil
	}

	symbol := gjson.GetBytes(body, "quotes.0.symbol")
	if symbol.Type != gjson.String {
		c.debug("no symbol match", map[string]any{"company": company})
		return "", nil
	}
	return strings.TrimSpace(symbol.String()), nil
}
