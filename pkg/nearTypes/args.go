package nearTypes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ActionArgs is the loosely typed argument bag attached to an action. Its keys
// follow the upstream payload (method_name, deposit, gas, args_json, ...).
type ActionArgs map[string]interface{}

// DecodeActionArgs turns a raw args payload into an ActionArgs. Objects are
// kept as-is, any other JSON value is stored under "args".
func DecodeActionArgs(raw json.RawMessage) ActionArgs {
	args := ActionArgs{}
	if len(raw) == 0 || string(raw) == "null" {
		return args
	}
	var v interface{}
	if err := UnmarshalUseNumber(raw, &v); err != nil {
		return args
	}
	if str, ok := v.(string); ok && strings.HasPrefix(strings.TrimSpace(str), "{") {
		// some indexer versions ship args as a JSON encoded string
		var inner interface{}
		if err := UnmarshalUseNumber([]byte(str), &inner); err == nil {
			v = inner
		}
	}
	if m, ok := v.(map[string]interface{}); ok {
		return ActionArgs(m)
	}
	return ActionArgs{"args": v}
}

// UnmarshalUseNumber decodes JSON keeping numbers as json.Number so yocto
// amounts survive untouched.
func UnmarshalUseNumber(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func (a ActionArgs) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case decimal.Decimal:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Amount reads key as an arbitrary-precision number. Missing and malformed
// values are absent.
func (a ActionArgs) Amount(key string) Amount {
	v, ok := a[key]
	if !ok || v == nil {
		return Amount{}
	}
	switch t := v.(type) {
	case decimal.Decimal:
		return NewAmount(t)
	case Amount:
		return t
	case float64:
		return NewAmount(decimal.NewFromFloat(t))
	case int:
		return NewAmount(decimal.NewFromInt(int64(t)))
	case int64:
		return NewAmount(decimal.NewFromInt(t))
	default:
		return AmountFromString(a.String(key))
	}
}

func (a ActionArgs) Map(key string) map[string]interface{} {
	if m, ok := a[key].(map[string]interface{}); ok {
		return m
	}
	if m, ok := a[key].(ActionArgs); ok {
		return m
	}
	return nil
}

// WithDefaults returns a copy in which deposit and gas are always present as
// decimal strings.
func (a ActionArgs) WithDefaults() ActionArgs {
	out := make(ActionArgs, len(a)+2)
	for k, v := range a {
		out[k] = v
	}
	out["deposit"] = a.Amount("deposit").String()
	out["gas"] = a.Amount("gas").String()
	return out
}
