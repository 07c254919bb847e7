package actionFilter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// compare checks field against value. Numeric fields and numeric strings are
// compared as decimals so yocto amounts order correctly; anything else is
// compared as text.
func compare(field gjson.Result, op Operator, value interface{}) (bool, error) {
	switch op {
	case Contains, NotContains:
		pattern, ok := value.(string)
		if !ok {
			return false, fmt.Errorf("%s requires a string value, got %T", op, value)
		}
		found := strings.Contains(field.String(), pattern)
		return found == (op == Contains), nil
	}

	cmp, err := order(field, value)
	if err != nil {
		return false, err
	}
	switch op {
	case Equals:
		return cmp == 0, nil
	case NotEquals:
		return cmp != 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case LessThan:
		return cmp < 0, nil
	case GreaterEqual:
		return cmp >= 0, nil
	case LessEqual:
		return cmp <= 0, nil
	}
	return false, fmt.Errorf("unsupported operator %s", op)
}

func order(field gjson.Result, value interface{}) (int, error) {
	want, ok := toDecimal(value)
	if ok {
		if got, err := decimal.NewFromString(field.String()); err == nil {
			return got.Cmp(want), nil
		}
	}
	switch v := value.(type) {
	case string:
		return strings.Compare(field.String(), v), nil
	case bool:
		if field.IsBool() && field.Bool() == v {
			return 0, nil
		}
		return 1, nil
	case json.Number:
		return strings.Compare(field.String(), v.String()), nil
	}
	return 0, fmt.Errorf("unsupported filter value %T", value)
}

func toDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	}
	return decimal.Decimal{}, false
}
