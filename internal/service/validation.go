package service

import (
	"errors"
	"reflect"
	"strings"

	producterrors "github.com/abgdnv/pantry/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// moneyScale is the number of fractional digits a price may carry.
const moneyScale = 2

// maxPrice is the exclusive upper bound of a NUMERIC(12,2) price column.
var maxPrice = decimal.New(1, 10)

// newValidator returns a validator that reports fields by their JSON name and
// understands decimal prices through the "money" tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("money", validateMoney)
	return v
}

// validateMoney accepts non-negative amounts below maxPrice with at most two decimal places.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.LessThan(maxPrice) && d.Equal(d.Truncate(moneyScale))
}

// toValidationError converts validator failures into a ValidationError.
func toValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return &producterrors.ValidationError{Fields: fields}
}
