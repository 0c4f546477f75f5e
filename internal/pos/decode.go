package pos

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// timestampLayouts lists the timestamp shapes the API has been seen to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp parses an API timestamp as UTC when it carries no zone.
// The second result is false when the value is blank or unparseable.
func ParseTimestamp(value string) (time.Time, bool) {
	return ParseTimestampIn(value, time.UTC)
}

// ParseTimestampIn parses an API timestamp. Values without a zone or offset
// are wall-clock times in loc; a nil loc means UTC.
func ParseTimestampIn(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isNull(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

// scalarText returns the text of a JSON string or number literal.
func scalarText(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if isNull(b) {
		return "", false
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	if b[0] == '{' || b[0] == '[' {
		return "", false
	}
	return string(b), true
}

// flexDecimal accepts a JSON number or numeric string. Anything else
// decodes to zero.
type flexDecimal struct {
	decimal.Decimal
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	d.Decimal = decimal.Zero
	text, ok := scalarText(b)
	if !ok || text == "" {
		return nil
	}
	v, err := decimal.NewFromString(text)
	if err != nil {
		return nil
	}
	d.Decimal = v
	return nil
}

// flexInt accepts a JSON number or numeric string. Fractions truncate and
// anything unparseable decodes to zero.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	*n = 0
	text, ok := scalarText(b)
	if !ok || text == "" {
		return nil
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		*n = flexInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		*n = flexInt(int64(f))
	}
	return nil
}

// flexString accepts strings, numbers and null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	text, _ := scalarText(b)
	*s = flexString(text)
	return nil
}

// flexTime keeps the timestamp text until the record is converted, since
// zone-less values are read in the dashboard's location.
type flexTime string

func (t *flexTime) UnmarshalJSON(b []byte) error {
	text, _ := scalarText(b)
	*t = flexTime(text)
	return nil
}

// in resolves the timestamp; anything unparseable is the zero time.
func (t flexTime) in(loc *time.Location) time.Time {
	v, _ := ParseTimestampIn(string(t), loc)
	return v
}

func (t flexTime) ptr(loc *time.Location) *time.Time {
	v := t.in(loc)
	if v.IsZero() {
		return nil
	}
	return &v
}

// wireItems decodes sale_items. A value that is not an array yields no items.
type wireItems []json.RawMessage

func (l *wireItems) UnmarshalJSON(b []byte) error {
	var elems []json.RawMessage
	if json.Unmarshal(b, &elems) != nil {
		elems = nil
	}
	*l = elems
	return nil
}

// optionalQuantity decodes quantities. Anything but an object leaves the
// product without a quantity record.
type optionalQuantity struct {
	*wireQuantity
}

func (q *optionalQuantity) UnmarshalJSON(b []byte) error {
	q.wireQuantity = nil
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var w wireQuantity
	if json.Unmarshal(trimmed, &w) != nil {
		return nil
	}
	q.wireQuantity = &w
	return nil
}

func (n *flexInt) ptr() *int64 {
	if n == nil {
		return nil
	}
	v := int64(*n)
	return &v
}

type wireQuantity struct {
	ID          flexString `json:"id"`
	ProductID   flexInt    `json:"product_id"`
	Size        flexInt    `json:"quantity_size"`
	CreatedDate flexTime   `json:"created_date"`
	UpdatedDate flexTime   `json:"updated_date"`
}

type wireProduct struct {
	ID           flexInt          `json:"id"`
	Name         flexString       `json:"name"`
	Barcode      flexString       `json:"barcode"`
	Category     flexString       `json:"category"`
	SalePrice    flexDecimal      `json:"sale_price"`
	Discount     flexDecimal      `json:"discount"`
	Tax          flexDecimal      `json:"tax"`
	SupplierID   *flexInt         `json:"supplier_id"`
	SupplierName flexString       `json:"supplier_name"`
	ExpireDate   flexTime         `json:"expire_date"`
	CreatedDate  flexTime         `json:"created_date"`
	Quantities   optionalQuantity `json:"quantities"`
}

func (w wireProduct) toProduct(loc *time.Location) Product {
	p := Product{
		ID:           int64(w.ID),
		Name:         string(w.Name),
		Barcode:      string(w.Barcode),
		Category:     string(w.Category),
		SalePrice:    w.SalePrice.Decimal,
		Discount:     w.Discount.Decimal,
		Tax:          w.Tax.Decimal,
		SupplierID:   w.SupplierID.ptr(),
		SupplierName: string(w.SupplierName),
		ExpireDate:   w.ExpireDate.ptr(loc),
		CreatedDate:  w.CreatedDate.in(loc),
	}
	if q := w.Quantities.wireQuantity; q != nil {
		size := int(q.Size)
		if size < 0 {
			size = 0
		}
		p.Quantity = &Quantity{
			ID:          string(q.ID),
			ProductID:   int64(q.ProductID),
			Size:        size,
			CreatedDate: q.CreatedDate.in(loc),
			UpdatedDate: q.UpdatedDate.in(loc),
		}
	}
	return p
}

type wireSupplier struct {
	ID            flexInt    `json:"id"`
	Name          flexString `json:"name"`
	ContactPerson flexString `json:"contact_person"`
	Phone         flexString `json:"phone"`
	Email         flexString `json:"email"`
	Address       flexString `json:"address"`
}

func (w wireSupplier) toSupplier() Supplier {
	return Supplier{
		ID:            int64(w.ID),
		Name:          string(w.Name),
		ContactPerson: string(w.ContactPerson),
		Phone:         string(w.Phone),
		Email:         string(w.Email),
		Address:       string(w.Address),
	}
}

type wireSaleItem struct {
	ID          flexInt     `json:"id"`
	SaleCode    flexString  `json:"sale_id"`
	ProductID   flexInt     `json:"product_id"`
	ProductName flexString  `json:"product_name"`
	Category    flexString  `json:"category"`
	Quantity    flexInt     `json:"quantity"`
	UnitPrice   flexDecimal `json:"unit_price"`
	SubTotal    flexDecimal `json:"sub_total"`
}

type wireSale struct {
	ID              flexInt     `json:"id"`
	Code            flexString  `json:"sale_id"`
	CustomerID      *flexInt    `json:"customer_id"`
	CustomerContact flexString  `json:"customer_contact"`
	SaleDate        flexTime    `json:"sale_date"`
	SubTotal        flexDecimal `json:"sub_total"`
	TaxAmount       flexDecimal `json:"tax_amount"`
	DiscountAmount  flexDecimal `json:"discount_amount"`
	TotalAmount     flexDecimal `json:"total_amount"`
	PaidAmount      flexDecimal `json:"paid_amount"`
	ChangeAmount    flexDecimal `json:"change_amount"`
	PaymentMethod   flexString  `json:"payment_method"`
	SaleItems       wireItems   `json:"sale_items"`
}

func (w wireSale) toSale(loc *time.Location) Sale {
	s := Sale{
		ID:              int64(w.ID),
		Code:            string(w.Code),
		CustomerID:      w.CustomerID.ptr(),
		CustomerContact: string(w.CustomerContact),
		SaleDate:        w.SaleDate.in(loc),
		SubTotal:        w.SubTotal.Decimal,
		TaxAmount:       w.TaxAmount.Decimal,
		DiscountAmount:  w.DiscountAmount.Decimal,
		TotalAmount:     w.TotalAmount.Decimal,
		PaidAmount:      w.PaidAmount.Decimal,
		ChangeAmount:    w.ChangeAmount.Decimal,
		PaymentMethod:   string(w.PaymentMethod),
		Items:           make([]SaleItem, 0, len(w.SaleItems)),
	}
	for _, raw := range w.SaleItems {
		var item wireSaleItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		code := string(item.SaleCode)
		if code == "" {
			code = s.Code
		}
		s.Items = append(s.Items, SaleItem{
			ID:          int64(item.ID),
			SaleCode:    code,
			ProductID:   int64(item.ProductID),
			ProductName: string(item.ProductName),
			Category:    string(item.Category),
			Quantity:    int(item.Quantity),
			UnitPrice:   item.UnitPrice.Decimal,
			SubTotal:    item.SubTotal.Decimal,
		})
	}
	return s
}

type wireCustomer struct {
	ID          flexInt    `json:"id"`
	Contact     flexString `json:"contact"`
	Email       flexString `json:"email"`
	CreatedDate flexTime   `json:"created_date"`
}

func (w wireCustomer) toCustomer(loc *time.Location) Customer {
	return Customer{
		ID:          int64(w.ID),
		Contact:     string(w.Contact),
		Email:       string(w.Email),
		CreatedDate: w.CreatedDate.in(loc),
	}
}

// decodeList decodes a JSON array record by record. Records that are not
// objects are skipped and counted; a payload that is not an array yields an
// empty, non-nil slice.
func decodeList[W any, T any](raw json.RawMessage, convert func(W) T) ([]T, int) {
	var elems []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &elems) != nil {
		return []T{}, 0
	}
	out := make([]T, 0, len(elems))
	skipped := 0
	for _, elem := range elems {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			skipped++
			continue
		}
		var w W
		if err := json.Unmarshal(trimmed, &w); err != nil {
			skipped++
			continue
		}
		out = append(out, convert(w))
	}
	return out, skipped
}

func decodeOne[W any, T any](raw json.RawMessage, convert func(W) T) (T, bool) {
	var zero T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return zero, false
	}
	var w W
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return zero, false
	}
	return convert(w), true
}

// DecodeProducts decodes a product array, returning the number of records
// that had to be skipped. Zone-less timestamps are read in loc.
func DecodeProducts(raw json.RawMessage, loc *time.Location) ([]Product, int) {
	return decodeList(raw, func(w wireProduct) Product { return w.toProduct(loc) })
}

// DecodeProduct decodes a single product object.
func DecodeProduct(raw json.RawMessage, loc *time.Location) (Product, bool) {
	return decodeOne(raw, func(w wireProduct) Product { return w.toProduct(loc) })
}

// DecodeSuppliers decodes a supplier array.
func DecodeSuppliers(raw json.RawMessage) ([]Supplier, int) {
	return decodeList(raw, wireSupplier.toSupplier)
}

// DecodeSales decodes a sale array together with the embedded items.
func DecodeSales(raw json.RawMessage, loc *time.Location) ([]Sale, int) {
	return decodeList(raw, func(w wireSale) Sale { return w.toSale(loc) })
}

// DecodeCustomers decodes a customer array.
func DecodeCustomers(raw json.RawMessage, loc *time.Location) ([]Customer, int) {
	return decodeList(raw, func(w wireCustomer) Customer { return w.toCustomer(loc) })
}

type wireAnalytics struct {
	SalesTrend []struct {
		Date    flexString  `json:"date"`
		Sales   flexInt     `json:"sales"`
		Revenue flexDecimal `json:"revenue"`
	} `json:"salesTrend"`
	TopProducts []struct {
		Name  flexString `json:"name"`
		Sales flexInt    `json:"sales"`
	} `json:"topProducts"`
	SalesByCategory []struct {
		Category flexString `json:"category"`
		Value    flexInt    `json:"value"`
	} `json:"salesByCategory"`
	RevenueByPaymentMethod []struct {
		Method  flexString  `json:"method"`
		Revenue flexDecimal `json:"revenue"`
	} `json:"revenueByPaymentMethod"`
	MonthlyRevenue []struct {
		Month   flexString  `json:"month"`
		Revenue flexDecimal `json:"revenue"`
	} `json:"monthlyRevenue"`
}

// DecodeAnalytics decodes the server analytics payload. Missing or malformed
// payloads produce EmptyAnalytics.
func DecodeAnalytics(raw json.RawMessage) SalesAnalytics {
	out := EmptyAnalytics()
	var w wireAnalytics
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &w) != nil {
		return out
	}
	for _, p := range w.SalesTrend {
		out.SalesTrend = append(out.SalesTrend, TrendPoint{Date: string(p.Date), Sales: int(p.Sales), Revenue: p.Revenue.Decimal})
	}
	for _, p := range w.TopProducts {
		out.TopProducts = append(out.TopProducts, ProductSales{Name: string(p.Name), Sales: int(p.Sales)})
	}
	for _, p := range w.SalesByCategory {
		out.SalesByCategory = append(out.SalesByCategory, CategorySales{Category: string(p.Category), Value: int(p.Value)})
	}
	for _, p := range w.RevenueByPaymentMethod {
		out.RevenueByPaymentMethod = append(out.RevenueByPaymentMethod, PaymentRevenue{Method: string(p.Method), Revenue: p.Revenue.Decimal})
	}
	for _, p := range w.MonthlyRevenue {
		out.MonthlyRevenue = append(out.MonthlyRevenue, MonthRevenue{Month: string(p.Month), Revenue: p.Revenue.Decimal})
	}
	return out
}
