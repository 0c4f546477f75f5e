package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/webpos/posdash/internal/pos"
)

// ListSuppliers fetches GET /suppliers.
func (c *Client) ListSuppliers(ctx context.Context) ([]pos.Supplier, error) {
	resp, err := c.do(ctx, call{op: "list suppliers", resource: "suppliers", method: http.MethodGet, path: "/suppliers"})
	if err != nil {
		return nil, err
	}
	suppliers, skipped := pos.DecodeSuppliers(resp.data)
	c.logSkipped("list suppliers", skipped)
	return suppliers, nil
}

// SearchSuppliers fetches GET /suppliers/search/{term}; a blank term lists
// every supplier.
func (c *Client) SearchSuppliers(ctx context.Context, term string) ([]pos.Supplier, error) {
	if strings.TrimSpace(term) == "" {
		return c.ListSuppliers(ctx)
	}
	resp, err := c.do(ctx, call{op: "search suppliers", resource: "suppliers", method: http.MethodGet, path: "/suppliers/search/" + segment(term)})
	if err != nil {
		return nil, err
	}
	suppliers, skipped := pos.DecodeSuppliers(resp.data)
	c.logSkipped("search suppliers", skipped)
	return suppliers, nil
}

// ListCustomers fetches GET /customers.
func (c *Client) ListCustomers(ctx context.Context) ([]pos.Customer, error) {
	resp, err := c.do(ctx, call{op: "list customers", resource: "customers", method: http.MethodGet, path: "/customers"})
	if err != nil {
		return nil, err
	}
	customers, skipped := pos.DecodeCustomers(resp.data, c.loc)
	c.logSkipped("list customers", skipped)
	return customers, nil
}

// SearchCustomers fetches GET /customers/search/{term}; a blank term lists
// every customer.
func (c *Client) SearchCustomers(ctx context.Context, term string) ([]pos.Customer, error) {
	if strings.TrimSpace(term) == "" {
		return c.ListCustomers(ctx)
	}
	resp, err := c.do(ctx, call{op: "search customers", resource: "customers", method: http.MethodGet, path: "/customers/search/" + segment(term)})
	if err != nil {
		return nil, err
	}
	customers, skipped := pos.DecodeCustomers(resp.data, c.loc)
	c.logSkipped("search customers", skipped)
	return customers, nil
}
