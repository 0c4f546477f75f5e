package pos

import "fmt"

// LowStockThreshold is the first quantity considered in stock.
const LowStockThreshold = 30

// StockBucket classifies a stock quantity.
type StockBucket string

// Stock buckets. Every non-negative quantity maps to exactly one.
const (
	OutOfStock StockBucket = "out-of-stock"
	LowStock   StockBucket = "low-stock"
	InStock    StockBucket = "in-stock"
)

// Classify maps a quantity to its bucket: 0 is out of stock, 1..29 is low
// stock, 30 and above is in stock. Negative quantities count as zero.
func Classify(qty int) StockBucket {
	switch {
	case qty <= 0:
		return OutOfStock
	case qty < LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// Label returns the human readable bucket name.
func (b StockBucket) Label() string {
	switch b {
	case OutOfStock:
		return "Out of Stock"
	case LowStock:
		return "Low Stock"
	case InStock:
		return "In Stock"
	default:
		return string(b)
	}
}

// ParseStockBucket validates a bucket name.
func ParseStockBucket(value string) (StockBucket, error) {
	switch b := StockBucket(value); b {
	case OutOfStock, LowStock, InStock:
		return b, nil
	default:
		return "", fmt.Errorf("%w: unknown stock level %q", ErrValidation, value)
	}
}
