// Package actionExport renders a parsed action list as JSON, YAML or CSV.
package actionExport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/nearblocks/txns-action/pkg/actionParser"
	"github.com/nearblocks/txns-action/pkg/eventParser"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	Format_Json Format = "json"
	Format_Yaml Format = "yaml"
	Format_Csv  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case Format_Json, "":
		return Format_Json, nil
	case Format_Yaml, "yml":
		return Format_Yaml, nil
	case Format_Csv:
		return Format_Csv, nil
	}
	return "", fmt.Errorf("unsupported format %s", s)
}

// ActionRow is the flat CSV rendition of one action.
type ActionRow struct {
	Index     int    `csv:"index"`
	Type      string `csv:"type"`
	From      string `csv:"from"`
	To        string `csv:"to"`
	Contract  string `csv:"contract"`
	Amount    string `csv:"amount"`
	Token     string `csv:"token"`
	ReceiptId string `csv:"receipt_id"`
	Details   string `csv:"details"`
}

// Write renders doc in the given format. JSON and YAML render the whole
// document, CSV only its actions.
func Write(w io.Writer, format Format, doc interface{}, actions []nearTypes.ParsedAction) error {
	switch format {
	case Format_Json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(doc), "failed to encode json")
	case Format_Yaml:
		generic, err := toGeneric(doc)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}
		return enc.Close()
	case Format_Csv:
		rows, err := Rows(actions)
		if err != nil {
			return err
		}
		return errors.Wrap(gocsv.Marshal(rows, w), "failed to encode csv")
	}
	return fmt.Errorf("unsupported format %s", format)
}

// Rows flattens actions into CSV rows, in order.
func Rows(actions []nearTypes.ParsedAction) ([]*ActionRow, error) {
	rows := make([]*ActionRow, 0, len(actions))
	for i, action := range actions {
		row, err := rowFor(action)
		if err != nil {
			return nil, err
		}
		row.Index = i
		rows = append(rows, row)
	}
	return rows, nil
}

func rowFor(action nearTypes.ParsedAction) (*ActionRow, error) {
	row := &ActionRow{Type: action.ActionType()}
	switch a := action.(type) {
	case *actionParser.BaseAction:
		row.From, row.To, row.ReceiptId = a.From, a.To, a.ReceiptId
		if deposit, ok := a.Details["deposit"].(string); ok {
			row.Amount = deposit
		}
		details, err := json.Marshal(a.Details)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode action details")
		}
		row.Details = string(details)
	case *eventParser.TokenEvent:
		row.From, row.To, row.Contract, row.ReceiptId = a.Sender, a.Recipient, a.Contract, a.ReceiptId
		row.Amount = a.Amount
		row.Token = symbolOr(a.Token, a.TokenContract)
		if a.TokenId != "" {
			row.Details = "token_id=" + a.TokenId
		}
	case *eventParser.TokenDiffEvent:
		row.From, row.Contract, row.ReceiptId = a.AccountId, a.Contract, a.ReceiptId
		if a.TokenIn != "" {
			row.Amount = a.AmountIn
			row.Token = symbolOr(a.TokenInMeta, a.TokenIn)
			row.Details = fmt.Sprintf("out=%s %s", a.AmountOut, symbolOr(a.TokenOutMeta, a.TokenOut))
		}
	case *eventParser.SwapEvent:
		row.From, row.Contract, row.ReceiptId = a.Sender, a.Contract, a.ReceiptId
		row.Amount = a.AmountIn
		row.Token = symbolOr(a.TokenInMeta, a.TokenIn)
		row.Details = fmt.Sprintf("out=%s %s", a.AmountOut, symbolOr(a.TokenOutMeta, a.TokenOut))
	case *eventParser.AccountEvent:
		row.From, row.To, row.Contract, row.ReceiptId = a.Sender, a.Recipient, a.Contract, a.ReceiptId
		row.Amount = a.Amount
		row.Token = symbolOr(a.Token, a.TokenContract)
	case *eventParser.BurrowEvent:
		row.From, row.Contract, row.ReceiptId = a.Data.AccountId, a.Contract, a.ReceiptId
		row.Amount = a.Data.Amount
		row.Token = symbolOr(a.Token, a.Data.TokenId)
	}
	return row, nil
}

func symbolOr(meta *nearTypes.TokenMetadata, fallback string) string {
	if meta != nil && meta.Symbol != "" {
		return meta.Symbol
	}
	return fallback
}

// toGeneric round-trips doc through JSON so YAML keys follow the JSON field
// names. Integral numbers stay integers and everything else stays a string.
func toGeneric(doc interface{}) (interface{}, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode document")
	}
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, errors.Wrap(err, "failed to decode document")
	}
	return normalizeNumbers(generic), nil
}

func normalizeNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = normalizeNumbers(inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = normalizeNumbers(inner)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		return t.String()
	}
	return v
}
