package mainActions

import (
	"encoding/json"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// CalculateTotalDeposit sums the deposits of RPC actions, descending into the
// inner actions of delegate actions.
func CalculateTotalDeposit(actions []json.RawMessage) decimal.Decimal {
	return sumActionField(actions, "deposit")
}

// CalculateTotalGas sums the attached gas of RPC actions, descending into the
// inner actions of delegate actions.
func CalculateTotalGas(actions []json.RawMessage) decimal.Decimal {
	return sumActionField(actions, "gas")
}

func sumActionField(actions []json.RawMessage, field string) decimal.Decimal {
	total := decimal.Zero
	for _, raw := range actions {
		total = total.Add(extractField(gjson.ParseBytes(raw), field))
	}
	return total
}

func extractField(action gjson.Result, field string) decimal.Decimal {
	total := decimal.Zero
	if !action.IsObject() {
		return total
	}
	action.ForEach(func(kind, body gjson.Result) bool {
		if nearTypes.NormalizeActionKind(kind.String()) == nearTypes.ActionKind_Delegate {
			for _, inner := range body.Get("delegate_action.actions").Array() {
				total = total.Add(extractField(inner, field))
			}
			return false
		}
		if v := body.Get(field); v.Exists() {
			total = total.Add(nearTypes.AmountFromString(v.String()).OrZero())
		}
		return false
	})
	return total
}

// CalculateGasUsed adds the gas burnt by every receipt outcome to the gas
// burnt converting the transaction.
func CalculateGasUsed(outcomes []nearTypes.ExecutionOutcomeWithId, txnGasBurnt nearTypes.Amount) decimal.Decimal {
	total := txnGasBurnt.OrZero()
	for _, outcome := range outcomes {
		total = total.Add(outcome.Outcome.GasBurnt.OrZero())
	}
	return total
}

// TransactionFee adds the tokens burnt by every receipt outcome to the tokens
// burnt converting the transaction.
func TransactionFee(outcomes []nearTypes.ExecutionOutcomeWithId, txnTokensBurnt nearTypes.Amount) decimal.Decimal {
	total := txnTokensBurnt.OrZero()
	for _, outcome := range outcomes {
		total = total.Add(outcome.Outcome.TokensBurnt.OrZero())
	}
	return total
}
