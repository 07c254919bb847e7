// Package actionFilter evaluates and/or/condition trees against parsed
// actions. Conditions address action fields with gjson paths over the
// action's JSON rendering, e.g. "type", "token.symbol" or "data.account_id".
package actionFilter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	Filter_Or        = "or"
	Filter_And       = "and"
	Filter_Condition = "condition"
)

type Operator int

const (
	Equals Operator = iota
	NotEquals
	GreaterThan
	LessThan
	GreaterEqual
	LessEqual
	Contains
	NotContains
)

func (o Operator) String() string {
	switch o {
	case Equals:
		return "eq"
	case NotEquals:
		return "ne"
	case GreaterThan:
		return "gt"
	case LessThan:
		return "lt"
	case GreaterEqual:
		return "gte"
	case LessEqual:
		return "lte"
	case Contains:
		return "contains"
	case NotContains:
		return "notContains"
	default:
		return "unknown"
	}
}

// ParseOperator accepts the names produced by Operator.String, case
// insensitively. An empty name means eq.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eq", "":
		return Equals, nil
	case "ne":
		return NotEquals, nil
	case "gt":
		return GreaterThan, nil
	case "lt":
		return LessThan, nil
	case "gte":
		return GreaterEqual, nil
	case "lte":
		return LessEqual, nil
	case "contains":
		return Contains, nil
	case "notcontains":
		return NotContains, nil
	default:
		return Equals, fmt.Errorf("unknown operator %q", s)
	}
}

// Filter is implemented by Condition, And and Or. action is the JSON rendering
// of one parsed action.
type Filter interface {
	Evaluate(action []byte) (bool, error)
	Type() string
}

// FilterJSON is the wire form of any filter.
type FilterJSON struct {
	Type     string       `json:"type"`
	Field    string       `json:"field,omitempty"`
	Operator string       `json:"operator,omitempty"`
	Value    interface{}  `json:"value,omitempty"`
	Filters  []FilterJSON `json:"filters,omitempty"`
}

type Condition struct {
	Field string
	Op    Operator
	Value interface{}
}

func (c *Condition) Type() string {
	return Filter_Condition
}

// Evaluate treats a missing field as matching only the negative operators.
func (c *Condition) Evaluate(action []byte) (bool, error) {
	field := gjson.GetBytes(action, c.Field)
	if !field.Exists() || field.Type == gjson.Null {
		return c.Op == NotEquals || c.Op == NotContains, nil
	}
	return compare(field, c.Op, c.Value)
}

type And struct {
	Filters []Filter
}

func (a *And) Type() string {
	return Filter_And
}

func (a *And) Evaluate(action []byte) (bool, error) {
	for _, filter := range a.Filters {
		result, err := filter.Evaluate(action)
		if err != nil {
			return false, err
		}
		if !result {
			return false, nil
		}
	}
	return true, nil
}

type Or struct {
	Filters []Filter
}

func (o *Or) Type() string {
	return Filter_Or
}

func (o *Or) Evaluate(action []byte) (bool, error) {
	for _, filter := range o.Filters {
		result, err := filter.Evaluate(action)
		if err != nil {
			return false, err
		}
		if result {
			return true, nil
		}
	}
	return false, nil
}

// ParseFilter builds a Filter out of its wire form.
func ParseFilter(f FilterJSON) (Filter, error) {
	switch f.Type {
	case Filter_Condition:
		if f.Field == "" {
			return nil, errors.New("condition requires a field")
		}
		op, err := ParseOperator(f.Operator)
		if err != nil {
			return nil, err
		}
		return &Condition{Field: f.Field, Op: op, Value: f.Value}, nil
	case Filter_And, Filter_Or:
		filters := make([]Filter, len(f.Filters))
		for i, inner := range f.Filters {
			var err error
			if filters[i], err = ParseFilter(inner); err != nil {
				return nil, err
			}
		}
		if f.Type == Filter_And {
			return &And{Filters: filters}, nil
		}
		return &Or{Filters: filters}, nil
	default:
		return nil, fmt.Errorf("unknown filter type %q", f.Type)
	}
}

// ParseFilterJSON decodes and builds a filter. Numbers keep their precision.
func ParseFilterJSON(data []byte) (Filter, error) {
	f := FilterJSON{}
	if err := nearTypes.UnmarshalUseNumber(data, &f); err != nil {
		return nil, errors.Wrap(err, "invalid filter")
	}
	return ParseFilter(f)
}

// FilterActions keeps, in order, the actions matching filter. A nil filter
// keeps everything.
func FilterActions(filter Filter, actions []nearTypes.ParsedAction) ([]nearTypes.ParsedAction, error) {
	if filter == nil {
		return actions, nil
	}
	out := make([]nearTypes.ParsedAction, 0, len(actions))
	for _, action := range actions {
		b, err := json.Marshal(action)
		if err != nil {
			return nil, errors.Wrap(err, "failed to render action")
		}
		match, err := filter.Evaluate(b)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, action)
		}
	}
	return out, nil
}
