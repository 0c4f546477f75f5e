package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/webpos/posdash/internal/pos"
)

// ListProducts fetches GET /products.
func (c *Client) ListProducts(ctx context.Context) ([]pos.Product, error) {
	resp, err := c.do(ctx, call{op: "list products", resource: "products", method: http.MethodGet, path: "/products"})
	if err != nil {
		return nil, err
	}
	products, skipped := pos.DecodeProducts(resp.data, c.loc)
	c.logSkipped("list products", skipped)
	return products, nil
}

// SearchProducts fetches GET /products/search/{term}. A blank term lists
// every product instead.
func (c *Client) SearchProducts(ctx context.Context, term string) ([]pos.Product, error) {
	if strings.TrimSpace(term) == "" {
		return c.ListProducts(ctx)
	}
	resp, err := c.do(ctx, call{op: "search products", resource: "products", method: http.MethodGet, path: "/products/search/" + segment(term)})
	if err != nil {
		return nil, err
	}
	products, skipped := pos.DecodeProducts(resp.data, c.loc)
	c.logSkipped("search products", skipped)
	return products, nil
}

// ProductsByCategory fetches GET /products/category/{category}.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]pos.Product, error) {
	resp, err := c.do(ctx, call{op: "products by category", resource: "products", method: http.MethodGet, path: "/products/category/" + segment(category)})
	if err != nil {
		return nil, err
	}
	products, skipped := pos.DecodeProducts(resp.data, c.loc)
	c.logSkipped("products by category", skipped)
	return products, nil
}

// GetProduct fetches GET /products/{id}. It returns nil, nil when the
// product does not exist.
func (c *Client) GetProduct(ctx context.Context, id int64) (*pos.Product, error) {
	data, found, err := c.lookup(ctx, call{op: "get product", resource: "products", method: http.MethodGet, path: "/products/" + idSegment(id)})
	if err != nil || !found {
		return nil, err
	}
	product, ok := pos.DecodeProduct(data, c.loc)
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// CreateProduct calls POST /products.
func (c *Client) CreateProduct(ctx context.Context, in pos.ProductInput) (*pos.Product, error) {
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, call{op: "create product", resource: "products", method: http.MethodPost, path: "/products", body: in})
	if err != nil {
		return nil, err
	}
	product, ok := pos.DecodeProduct(resp.data, c.loc)
	if !ok {
		return nil, fmt.Errorf("create product: %w", ErrEmptyResponse)
	}
	return &product, nil
}

// UpdateProduct calls PUT /products/{id} with a partial body. It returns
// nil, nil when the product does not exist.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in pos.ProductInput) (*pos.Product, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}
	data, found, err := c.lookup(ctx, call{op: "update product", resource: "products", method: http.MethodPut, path: "/products/" + idSegment(id), body: in})
	if err != nil || !found {
		return nil, err
	}
	product, ok := pos.DecodeProduct(data, c.loc)
	if !ok {
		return nil, fmt.Errorf("update product: %w", ErrEmptyResponse)
	}
	return &product, nil
}

// DeleteProduct calls DELETE /products/{id}. It reports false when the
// product did not exist.
func (c *Client) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	_, found, err := c.lookup(ctx, call{op: "delete product", resource: "products", method: http.MethodDelete, path: "/products/" + idSegment(id)})
	if err != nil {
		return false, err
	}
	return found, nil
}

// UpdateQuantity calls PUT /quantities/product/{id}. It returns nil, nil
// when the product has no quantity record.
func (c *Client) UpdateQuantity(ctx context.Context, productID int64, quantitySize int) (*pos.Product, error) {
	body := pos.QuantityUpdate{QuantitySize: quantitySize}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	data, found, err := c.lookup(ctx, call{op: "update quantity", resource: "quantities", method: http.MethodPut, path: "/quantities/product/" + idSegment(productID), body: body})
	if err != nil || !found {
		return nil, err
	}
	product, ok := pos.DecodeProduct(data, c.loc)
	if !ok {
		return nil, fmt.Errorf("update quantity: %w", ErrEmptyResponse)
	}
	return &product, nil
}
