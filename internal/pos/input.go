package pos

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidation marks input rejected before reaching the API.
var ErrValidation = errors.New("pos: validation failed")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProductInput carries product fields for create and partial update calls.
// Nil fields are omitted from the request body.
type ProductInput struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Barcode      *string          `json:"barcode,omitempty" validate:"omitempty,max=64"`
	Category     *string          `json:"category,omitempty" validate:"omitempty,max=128"`
	SalePrice    *decimal.Decimal `json:"sale_price,omitempty" validate:"omitempty,gte=0"`
	Discount     *decimal.Decimal `json:"discount,omitempty" validate:"omitempty,gte=0"`
	Tax          *decimal.Decimal `json:"tax,omitempty" validate:"omitempty,gte=0"`
	SupplierID   *int64           `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	SupplierName *string          `json:"supplier_name,omitempty" validate:"omitempty,max=255"`
	ExpireDate   *string          `json:"expire_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ValidateCreate checks the input for a create call, which needs at least a
// name and a sale price.
func (in ProductInput) ValidateCreate() error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.SalePrice == nil {
		return fmt.Errorf("%w: sale_price is required", ErrValidation)
	}
	return ValidateStruct(in)
}

// ValidateUpdate checks the input for a partial update, which must change
// at least one field.
func (in ProductInput) ValidateUpdate() error {
	if in.Name == nil && in.Barcode == nil && in.Category == nil && in.SalePrice == nil &&
		in.Discount == nil && in.Tax == nil && in.SupplierID == nil && in.SupplierName == nil &&
		in.ExpireDate == nil {
		return fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	return ValidateStruct(in)
}

// QuantityUpdate is the body of PUT /quantities/product/{id}.
type QuantityUpdate struct {
	QuantitySize int `json:"quantity_size" validate:"gte=0"`
}

// Validate enforces quantity_size >= 0.
func (q QuantityUpdate) Validate() error {
	return ValidateStruct(q)
}

// ValidateStruct runs the shared validator over v, reporting failures as
// ErrValidation with the offending json field names.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
