package actionFilter

import (
	"testing"

	"github.com/nearblocks/txns-action/pkg/actionParser"
	"github.com/nearblocks/txns-action/pkg/eventParser"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/stretchr/testify/assert"
)

func Test_ParseFilterJSON(t *testing.T) {
	t.Run("Nested", func(t *testing.T) {
		f, err := ParseFilterJSON([]byte(`{"type":"and","filters":[
			{"type":"condition","field":"type","operator":"eq","value":"transfer"},
			{"type":"or","filters":[
				{"type":"condition","field":"sender","value":"alice.near"},
				{"type":"condition","field":"recipient","value":"alice.near"}
			]}
		]}`))
		assert.Nil(t, err)
		and, ok := f.(*And)
		assert.True(t, ok)
		assert.Len(t, and.Filters, 2)
		assert.Equal(t, Filter_Or, and.Filters[1].Type())
		assert.Equal(t, Equals, and.Filters[1].(*Or).Filters[0].(*Condition).Op)
	})
	t.Run("Errors", func(t *testing.T) {
		_, err := ParseFilterJSON([]byte(`{"type":"xor"}`))
		assert.NotNil(t, err)
		_, err = ParseFilterJSON([]byte(`{"type":"condition","field":"type","operator":"like"}`))
		assert.NotNil(t, err)
		_, err = ParseFilterJSON([]byte(`{"type":"condition"}`))
		assert.NotNil(t, err)
		_, err = ParseFilterJSON([]byte(`{`))
		assert.NotNil(t, err)
	})
}

func Test_Evaluate(t *testing.T) {
	action := []byte(`{"type":"transfer","sender":"alice.near","amount":"1000000000000000000000001","token":{"symbol":"USDt","decimals":6},"token_id":null}`)

	tests := []struct {
		name     string
		filter   string
		expected bool
	}{
		{"eq string", `{"type":"condition","field":"type","operator":"eq","value":"transfer"}`, true},
		{"ne string", `{"type":"condition","field":"type","operator":"ne","value":"transfer"}`, false},
		{"nested path", `{"type":"condition","field":"token.symbol","value":"USDt"}`, true},
		{"big amount gt", `{"type":"condition","field":"amount","operator":"gt","value":"1000000000000000000000000"}`, true},
		{"big amount lte number", `{"type":"condition","field":"amount","operator":"lte","value":1000000000000000000000000}`, false},
		{"decimals gte", `{"type":"condition","field":"token.decimals","operator":"gte","value":6}`, true},
		{"contains", `{"type":"condition","field":"sender","operator":"contains","value":".near"}`, true},
		{"notContains", `{"type":"condition","field":"sender","operator":"notContains","value":"bob"}`, true},
		{"missing field eq", `{"type":"condition","field":"recipient","value":"bob.near"}`, false},
		{"missing field ne", `{"type":"condition","field":"recipient","operator":"ne","value":"bob.near"}`, true},
		{"null field", `{"type":"condition","field":"token_id","value":"1"}`, false},
		{"empty and", `{"type":"and"}`, true},
		{"empty or", `{"type":"or"}`, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, err := ParseFilterJSON([]byte(test.filter))
			assert.Nil(t, err)
			result, err := f.Evaluate(action)
			assert.Nil(t, err)
			assert.Equal(t, test.expected, result)
		})
	}

	t.Run("contains needs a string", func(t *testing.T) {
		f, err := ParseFilterJSON([]byte(`{"type":"condition","field":"sender","operator":"contains","value":1}`))
		assert.Nil(t, err)
		_, err = f.Evaluate(action)
		assert.NotNil(t, err)
	})
}

func Test_FilterActions(t *testing.T) {
	actions := []nearTypes.ParsedAction{
		&actionParser.BaseAction{Type: "function_call", From: "alice.near", To: "usdt.near"},
		&eventParser.TokenEvent{Type: "transfer", Contract: "usdt.near", Sender: "alice.near", Recipient: "bob.near", Amount: "10"},
		&eventParser.TokenEvent{Type: "mint", Contract: "usdt.near", Recipient: "carol.near", Amount: "5"},
	}

	t.Run("Keeps order", func(t *testing.T) {
		f, err := ParseFilterJSON([]byte(`{"type":"condition","field":"contract","value":"usdt.near"}`))
		assert.Nil(t, err)
		out, err := FilterActions(f, actions)
		assert.Nil(t, err)
		assert.Len(t, out, 2)
		assert.Equal(t, "transfer", out[0].ActionType())
		assert.Equal(t, "mint", out[1].ActionType())
	})
	t.Run("Nil filter keeps everything", func(t *testing.T) {
		out, err := FilterActions(nil, actions)
		assert.Nil(t, err)
		assert.Len(t, out, 3)
	})
}
