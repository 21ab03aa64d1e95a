package invoices

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"invoice-dashboard-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Form is the submitted invoice form. Every value arrives as text.
type Form struct {
	CustomerID string `form:"customerId" json:"customerId"`
	Amount     string `form:"amount" json:"amount"`
	Status     string `form:"status" json:"status"`
}

// FieldErrors maps a form field name to its messages.
type FieldErrors map[string][]string

var fieldMessages = map[string]string{
	"customerId": "Please select a customer.",
	"amount":     "Please enter an amount greater than $0.",
	"status":     "Please select an invoice status.",
}

// fields is the validated shape of Form. Amount is already in cents.
type fields struct {
	CustomerID string `json:"customerId" validate:"required,uuid"`
	Cents      int64  `json:"amount" validate:"gt=0"`
	Status     string `json:"status" validate:"oneof=pending paid"`
}

func (f fields) invoice() models.Invoice {
	return models.Invoice{
		CustomerID: uuid.MustParse(f.CustomerID),
		Amount:     f.Cents,
		Status:     f.Status,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Amounts longer than maxAmountLen or with an exponent outside
// ±maxAmountExp are rejected before any arithmetic.
const (
	maxAmountLen = 32
	maxAmountExp = 20
)

// toCents parses a decimal amount and converts it to whole cents, rounding
// half away from zero. Decimal arithmetic keeps two-place inputs exact.
// Unparseable or out-of-range input yields 0, which validation rejects.
func toCents(amount string) int64 {
	amount = strings.TrimSpace(amount)
	if len(amount) > maxAmountLen {
		return 0
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0
	}
	if exp := d.Exponent(); exp < -maxAmountExp || exp > maxAmountExp {
		return 0
	}
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0
	}
	return cents.IntPart()
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

func parse(v *validator.Validate, form Form) (fields, FieldErrors) {
	f := fields{
		CustomerID: strings.TrimSpace(form.CustomerID),
		Cents:      toCents(form.Amount),
		Status:     form.Status,
	}
	err := v.Struct(f)
	if err == nil {
		return f, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields{}, FieldErrors{"form": {err.Error()}}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = fe.Error()
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return fields{}, out
}
