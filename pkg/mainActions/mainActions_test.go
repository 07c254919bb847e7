package mainActions

import (
	"encoding/json"
	"testing"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/stretchr/testify/assert"
)

const apiTxnFixture = `{
	"transaction_hash": "hash1",
	"signer_account_id": "alice.near",
	"receiver_account_id": "usdt.near",
	"block": {"block_height": 150000000},
	"actions": [
		{"action": "FUNCTION_CALL", "method": "ft_transfer", "args": {"method_name": "ft_transfer", "args_json": {"receiver_id": "bob.near", "amount": "1000000"}, "deposit": "1", "gas": "30000000000000"}},
		{"action": "TRANSFER", "method": null, "args": null}
	],
	"actions_agg": {"deposit": "1", "gas_attached": "60000000000000"},
	"receipts": [
		{"receipt_id": "r1", "outcome": {"executor_account_id": "usdt.near", "logs": ["EVENT_JSON:{\"standard\":\"nep141\",\"event\":\"ft_transfer\",\"data\":[]}", "plain"]}},
		{"receipt_id": "r2", "outcome": {"executor_account_id": "alice.near", "logs": ["ignored"]}}
	]
}`

func Test_BuildApiMainActions(t *testing.T) {
	txn := &nearTypes.ApiTransaction{}
	assert.Nil(t, json.Unmarshal([]byte(apiTxnFixture), txn))

	actions := BuildApiMainActions(txn)
	assert.Len(t, actions, 2)

	t.Run("Shared first receipt context", func(t *testing.T) {
		for _, a := range actions {
			assert.Equal(t, "alice.near", a.From)
			assert.Equal(t, "usdt.near", a.To)
			assert.Equal(t, "r1", a.ReceiptId)
			assert.Len(t, a.Logs, 2)
			assert.Len(t, a.ActionsLog, 2)
		}
		assert.NotNil(t, actions[0].Logs[0].Logs.Event)
		assert.Equal(t, "usdt.near", actions[0].Logs[0].Contract)
		assert.True(t, actions[0].Logs[1].Logs.IsString())
	})
	t.Run("Kinds are normalized", func(t *testing.T) {
		assert.Equal(t, "FUNCTIONCALL", actions[0].ActionKind)
		assert.Equal(t, "TRANSFER", actions[1].ActionKind)
	})
	t.Run("Args merge the action over the aggregate", func(t *testing.T) {
		assert.Equal(t, "ft_transfer", actions[0].Args.String("method_name"))
		assert.Equal(t, "30000000000000", actions[0].Args.String("gas"))
		assert.Equal(t, "1", actions[0].Args.String("deposit"))
		assert.Equal(t, "60000000000000", actions[1].Args.String("gas"))
	})
	t.Run("Actions log defaults", func(t *testing.T) {
		first := actions[0].ActionsLog[0]
		assert.Equal(t, "1", first.Args.Deposit.String())
		assert.Equal(t, "30000000000000", first.Args.Gas.String())
		assert.Equal(t, "ft_transfer", first.Args.MethodName)
		assert.NotNil(t, first.Args.Args)

		second := actions[0].ActionsLog[1]
		assert.Equal(t, "0", second.Args.Deposit.String())
		assert.Equal(t, "60000000000000", second.Args.Gas.String())
	})
	t.Run("Nil and empty transactions", func(t *testing.T) {
		assert.Empty(t, BuildApiMainActions(nil))
		assert.Empty(t, BuildApiMainActions(&nearTypes.ApiTransaction{}))
	})
}

const rpcTxnFixture = `{
	"transaction": {
		"hash": "hash1",
		"signer_id": "alice.near",
		"receiver_id": "usdt.near",
		"actions": [
			{"FunctionCall": {"method_name": "ft_transfer", "args": "eyJyZWNlaXZlcl9pZCI6ImJvYi5uZWFyIiwiYW1vdW50IjoiMTAwMDAwMCJ9", "gas": 30000000000000, "deposit": "1"}},
			"CreateAccount"
		]
	},
	"transaction_outcome": {"id": "t1", "outcome": {"receipt_ids": ["r1"], "gas_burnt": 100, "tokens_burnt": "1000"}},
	"receipts_outcome": [
		{"id": "r1", "outcome": {"executor_id": "usdt.near", "logs": ["EVENT_JSON:{\"standard\":\"nep141\"}"], "gas_burnt": 200, "tokens_burnt": "2000"}},
		{"id": "r2", "outcome": {"executor_id": "alice.near", "logs": [], "gas_burnt": 300, "tokens_burnt": "3000"}}
	],
	"status": {"SuccessValue": ""}
}`

func Test_BuildRpcMainActions(t *testing.T) {
	txn := &nearTypes.RpcTransaction{}
	assert.Nil(t, json.Unmarshal([]byte(rpcTxnFixture), txn))

	actions := BuildRpcMainActions(txn)
	assert.Len(t, actions, 2)

	t.Run("Context and raw logs", func(t *testing.T) {
		assert.Equal(t, "r1", actions[0].ReceiptId)
		assert.Equal(t, "alice.near", actions[0].From)
		assert.Len(t, actions[0].Logs, 1)
		assert.True(t, actions[0].Logs[0].Logs.IsString())
	})
	t.Run("Kinds and args", func(t *testing.T) {
		assert.Equal(t, "FUNCTIONCALL", actions[0].ActionKind)
		assert.Equal(t, "CREATEACCOUNT", actions[1].ActionKind)
		assert.Equal(t, "0", actions[1].Args.String("deposit"))
		assert.Equal(t, "0", actions[1].Args.String("gas"))
	})
	t.Run("Actions log decodes call args", func(t *testing.T) {
		entry := actions[0].ActionsLog[0]
		assert.Equal(t, "ft_transfer", entry.Args.MethodName)
		assert.Equal(t, "30000000000000", entry.Args.Gas.String())
		assert.JSONEq(t, `{"receiver_id":"bob.near","amount":"1000000"}`, entry.Args.Args.(string))
		assert.Equal(t, EmptyArgsMessage, actions[0].ActionsLog[1].Args.Args)
	})
	t.Run("Totals", func(t *testing.T) {
		assert.Equal(t, "1", CalculateTotalDeposit(txn.Transaction.Actions).String())
		assert.Equal(t, "30000000000000", CalculateTotalGas(txn.Transaction.Actions).String())
		assert.Equal(t, "600", CalculateGasUsed(txn.ReceiptsOutcome, txn.TransactionOutcome.Outcome.GasBurnt).String())
		assert.Equal(t, "6000", TransactionFee(txn.ReceiptsOutcome, txn.TransactionOutcome.Outcome.TokensBurnt).String())
	})
}

func Test_MapRpcActionToAction(t *testing.T) {
	t.Run("Bare string", func(t *testing.T) {
		a := MapRpcActionToAction(json.RawMessage(`"CreateAccount"`))
		assert.Equal(t, "CREATEACCOUNT", a.ActionKind)
		assert.Empty(t, a.Args)
	})
	t.Run("Keyed object", func(t *testing.T) {
		a := MapRpcActionToAction(json.RawMessage(`{"Transfer":{"deposit":"340282366920938463463374607431768211455"}}`))
		assert.Equal(t, "TRANSFER", a.ActionKind)
		assert.Equal(t, "340282366920938463463374607431768211455", a.Args.String("deposit"))
	})
	t.Run("Unsupported", func(t *testing.T) {
		assert.Nil(t, MapRpcActionToAction(json.RawMessage(`42`)))
	})
}

func Test_CalculateTotalsWithDelegate(t *testing.T) {
	actions := []json.RawMessage{
		json.RawMessage(`{"Delegate":{"delegate_action":{"actions":[{"Transfer":{"deposit":"5"}},{"FunctionCall":{"deposit":"7","gas":"10"}}]}}}`),
		json.RawMessage(`{"Transfer":{"deposit":"3"}}`),
	}
	assert.Equal(t, "15", CalculateTotalDeposit(actions).String())
	assert.Equal(t, "10", CalculateTotalGas(actions).String())
}

func Test_DisplayArgs(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, EmptyArgsMessage, DisplayArgs(nil))
		assert.Equal(t, EmptyArgsMessage, DisplayArgs(""))
	})
	t.Run("Not JSON", func(t *testing.T) {
		assert.Equal(t, "", DisplayArgs("bm90IGpzb24="))
		assert.Equal(t, "", DisplayArgs("%%%"))
	})
	t.Run("Nested base64 is decoded", func(t *testing.T) {
		out := DisplayArgs("eyJtc2ciOiJleUpoSWpveGZRPT0ifQ==")
		assert.JSONEq(t, `{"msg":{"a":1}}`, out)
	})
}

func Test_ParseNestedJSON(t *testing.T) {
	in := map[string]interface{}{
		"account": "alice.near",
		"list":    []interface{}{"eyJhIjoxfQ=="},
		"inner":   map[string]interface{}{"msg": "eyJhIjoxfQ=="},
	}
	out := ParseNestedJSON(in).(map[string]interface{})
	assert.Equal(t, "alice.near", out["account"])
	assert.Equal(t, []interface{}{"eyJhIjoxfQ=="}, out["list"])
	assert.Equal(t, map[string]interface{}{"a": json.Number("1")}, out["inner"].(map[string]interface{})["msg"])
}
