package nearTypes

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a lenient arbitrary-precision number. Upstream payloads mix JSON
// numbers, numeric strings, empty strings and null for the same field; all of
// them decode, and anything unparseable decodes as absent.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Value: d, Valid: true}
}

func AmountFromString(s string) Amount {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}
	}
	return NewAmount(d)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = Amount{}
		return nil
	}
	*a = AmountFromString(strings.Trim(s, `"`))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.OrZero().String())
}

// OrZero returns the value, or zero when absent.
func (a Amount) OrZero() decimal.Decimal {
	if !a.Valid {
		return decimal.Zero
	}
	return a.Value
}

// IsPositive is false for absent values.
func (a Amount) IsPositive() bool {
	return a.Valid && a.Value.IsPositive()
}

// Or returns a when it holds a non-zero value, otherwise fallback.
func (a Amount) Or(fallback Amount) Amount {
	if a.Valid && !a.Value.IsZero() {
		return a
	}
	return fallback
}

func (a Amount) String() string {
	return a.OrZero().String()
}

// FlexString decodes either a JSON string or a JSON number into a string.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = FlexString(str)
		return nil
	}
	*f = FlexString(s)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
