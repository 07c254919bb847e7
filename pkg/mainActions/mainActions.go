// Package mainActions derives the top-level actions of a transaction from
// either the indexer or the RPC view of it.
package mainActions

import (
	"encoding/json"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/transactionLogParser"
	"github.com/nearblocks/txns-action/pkg/utils"
	"github.com/tidwall/gjson"
)

// BuildApiMainActions returns one ActionInfo per signed action of an indexer
// transaction. All of them share the first receipt's id and logs.
func BuildApiMainActions(txn *nearTypes.ApiTransaction) []*nearTypes.ActionInfo {
	actions := make([]*nearTypes.ActionInfo, 0)
	if txn == nil {
		return actions
	}

	from := txn.SignerAccountId
	to := txn.ReceiverAccountId

	var receiptId string
	logs := make([]nearTypes.TransactionLog, 0)
	if len(txn.Receipts) > 0 {
		first := txn.Receipts[0]
		receiptId = first.ReceiptId
		for _, line := range first.Outcome.Logs {
			logs = append(logs, nearTypes.TransactionLog{
				Contract:  to,
				Logs:      transactionLogParser.ParseEventJson(line),
				ReceiptId: receiptId,
			})
		}
	}

	actionsLog := utils.Map(txn.Actions, func(action nearTypes.ApiAction, i uint64) nearTypes.ActionLogEntry {
		args := nearTypes.DecodeActionArgs(action.Args)
		callArgs := args["args"]
		if callArgs == nil {
			callArgs = args["args_json"]
		}
		return nearTypes.ActionLogEntry{
			ActionKind: string(nearTypes.NormalizeActionKind(action.Action)),
			Args: nearTypes.ActionLogArgs{
				Deposit:    args.Amount("deposit").Or(action.Deposit).OrZero(),
				Gas:        args.Amount("gas").Or(txn.ActionsAgg.GasAttached).OrZero(),
				MethodName: methodName(action, args),
				Args:       callArgs,
			},
		}
	})

	for _, action := range txn.Actions {
		args := nearTypes.ActionArgs{
			"method_name": action.Method,
			"deposit":     txn.ActionsAgg.Deposit.String(),
			"gas":         txn.ActionsAgg.GasAttached.String(),
		}
		for k, v := range nearTypes.DecodeActionArgs(action.Args) {
			args[k] = v
		}
		actions = append(actions, &nearTypes.ActionInfo{
			From:       from,
			To:         to,
			ReceiptId:  receiptId,
			ActionKind: string(nearTypes.NormalizeActionKind(action.Action)),
			Args:       args.WithDefaults(),
			Logs:       logs,
			ActionsLog: actionsLog,
		})
	}
	return actions
}

func methodName(action nearTypes.ApiAction, args nearTypes.ActionArgs) string {
	if m := args.String("method_name"); m != "" {
		return m
	}
	return action.Method
}

// BuildRpcMainActions returns one ActionInfo per signed action of an RPC
// transaction. Logs of the first receipt outcome are kept as raw strings.
func BuildRpcMainActions(txn *nearTypes.RpcTransaction) []*nearTypes.ActionInfo {
	actions := make([]*nearTypes.ActionInfo, 0)
	if txn == nil {
		return actions
	}

	from := txn.Transaction.SignerId
	to := txn.Transaction.ReceiverId

	var receiptId string
	if ids := txn.TransactionOutcome.Outcome.ReceiptIds; len(ids) > 0 {
		receiptId = ids[0]
	}

	logs := make([]nearTypes.TransactionLog, 0)
	if len(txn.ReceiptsOutcome) > 0 {
		for _, line := range txn.ReceiptsOutcome[0].Outcome.Logs {
			logs = append(logs, nearTypes.TransactionLog{
				Contract:  to,
				Logs:      nearTypes.RawPayload(line),
				ReceiptId: receiptId,
			})
		}
	}

	mapped := utils.Map(txn.Transaction.Actions, func(raw json.RawMessage, i uint64) *nearTypes.ReceiptAction {
		return MapRpcActionToAction(raw)
	})

	actionsLog := make([]nearTypes.ActionLogEntry, 0, len(mapped))
	for _, action := range mapped {
		if action == nil {
			continue
		}
		actionsLog = append(actionsLog, nearTypes.ActionLogEntry{
			ActionKind: action.ActionKind,
			Args: nearTypes.ActionLogArgs{
				Deposit:    action.Args.Amount("deposit").OrZero(),
				Gas:        action.Args.Amount("gas").OrZero(),
				MethodName: action.Args.String("method_name"),
				Args:       DisplayArgs(action.Args["args"]),
			},
		})
	}

	for _, action := range mapped {
		if action == nil {
			continue
		}
		actions = append(actions, &nearTypes.ActionInfo{
			From:       from,
			To:         to,
			ReceiptId:  receiptId,
			ActionKind: action.ActionKind,
			Args:       action.Args.WithDefaults(),
			Logs:       logs,
			ActionsLog: actionsLog,
		})
	}
	return actions
}

// MapRpcActionToAction converts an RPC action, either a bare kind string such
// as "CreateAccount" or a single keyed object such as {"Transfer":{...}}.
// Anything else maps to nil.
func MapRpcActionToAction(raw json.RawMessage) *nearTypes.ReceiptAction {
	parsed := gjson.ParseBytes(raw)
	switch {
	case parsed.Type == gjson.String:
		return &nearTypes.ReceiptAction{
			ActionKind: string(nearTypes.NormalizeActionKind(parsed.String())),
			Args:       nearTypes.ActionArgs{},
		}
	case parsed.IsObject():
		var action *nearTypes.ReceiptAction
		parsed.ForEach(func(key, value gjson.Result) bool {
			args := nearTypes.DecodeActionArgs(json.RawMessage(value.Raw))
			action = &nearTypes.ReceiptAction{
				ActionKind: string(nearTypes.NormalizeActionKind(key.String())),
				Args:       args,
			}
			return false
		})
		return action
	default:
		return nil
	}
}
