package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/webpos/posdash/internal/pos"
)

// SalesQuery narrows GET /sales. Dates are date-only strings (YYYY-MM-DD).
type SalesQuery struct {
	StartDate  string
	EndDate    string
	CustomerID int64
}

func (q SalesQuery) values() (url.Values, error) {
	values := url.Values{}
	if start := strings.TrimSpace(q.StartDate); start != "" {
		if _, err := time.Parse(time.DateOnly, start); err != nil {
			return nil, fmt.Errorf("%w: startDate must be YYYY-MM-DD", pos.ErrValidation)
		}
		values.Set("startDate", start)
	}
	if end := strings.TrimSpace(q.EndDate); end != "" {
		if _, err := time.Parse(time.DateOnly, end); err != nil {
			return nil, fmt.Errorf("%w: endDate must be YYYY-MM-DD", pos.ErrValidation)
		}
		values.Set("endDate", end)
	}
	if q.CustomerID > 0 {
		values.Set("customerId", strconv.FormatInt(q.CustomerID, 10))
	}
	return values, nil
}

// ListSales fetches GET /sales with the optional query constraints.
func (c *Client) ListSales(ctx context.Context, q SalesQuery) ([]pos.Sale, error) {
	values, err := q.values()
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, call{op: "list sales", resource: "sales", method: http.MethodGet, path: "/sales", query: values})
	if err != nil {
		return nil, err
	}
	sales, skipped := pos.DecodeSales(resp.data, c.loc)
	c.logSkipped("list sales", skipped)
	return sales, nil
}

// SalesAnalytics fetches the server-computed GET /sales/analytics report.
func (c *Client) SalesAnalytics(ctx context.Context) (pos.SalesAnalytics, error) {
	resp, err := c.do(ctx, call{op: "sales analytics", resource: "sales", method: http.MethodGet, path: "/sales/analytics"})
	if err != nil {
		return pos.SalesAnalytics{}, err
	}
	return pos.DecodeAnalytics(resp.data), nil
}

// SalesByCustomer fetches GET /sales/customer/{id}.
func (c *Client) SalesByCustomer(ctx context.Context, customerID int64) ([]pos.Sale, error) {
	resp, err := c.do(ctx, call{op: "sales by customer", resource: "sales", method: http.MethodGet, path: "/sales/customer/" + idSegment(customerID)})
	if err != nil {
		return nil, err
	}
	sales, skipped := pos.DecodeSales(resp.data, c.loc)
	c.logSkipped("sales by customer", skipped)
	return sales, nil
}
