// Package actionParser turns the protocol level action of a transaction
// (transfer, function call, stake, key management, ...) into parsed actions.
// Delegate actions are expanded into one parsed action per relayed action.
package actionParser

import (
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"go.uber.org/zap"
)

const (
	ActionType_Transfer       = "transfer"
	ActionType_FunctionCall   = "function_call"
	ActionType_Stake          = "stake"
	ActionType_DeployContract = "deploy_contract"
	ActionType_AddKey         = "add_key"
	ActionType_DeleteKey      = "delete_key"
	ActionType_DeleteAccount  = "delete_account"
	ActionType_CreateAccount  = "create_account"
)

var actionTypes = map[nearTypes.ActionKind]string{
	nearTypes.ActionKind_Transfer:       ActionType_Transfer,
	nearTypes.ActionKind_FunctionCall:   ActionType_FunctionCall,
	nearTypes.ActionKind_Stake:          ActionType_Stake,
	nearTypes.ActionKind_DeployContract: ActionType_DeployContract,
	nearTypes.ActionKind_AddKey:         ActionType_AddKey,
	nearTypes.ActionKind_DeleteKey:      ActionType_DeleteKey,
	nearTypes.ActionKind_DeleteAccount:  ActionType_DeleteAccount,
	nearTypes.ActionKind_CreateAccount:  ActionType_CreateAccount,
}

// BaseAction is a parsed protocol level action.
type BaseAction struct {
	// Type is the snake_case action type, e.g. function_call
	Type string `json:"type"`
	// Details holds the kind specific fields of the action
	Details map[string]interface{} `json:"details"`
	// From is the signer, or the relayed sender for delegated actions
	From string `json:"from"`
	// To is the receiver, or the relayed receiver for delegated actions
	To string `json:"to"`
	// ReceiptId is the id of the first receipt of the transaction
	ReceiptId string `json:"receiptId"`
	// TxnHash is the hash of the transaction the action belongs to
	TxnHash string `json:"txnHash"`
	// DelegateIndex is the position inside the delegate action, if any
	DelegateIndex *int `json:"delegateIndex,omitempty"`
}

func (a *BaseAction) ActionType() string { return a.Type }

type ActionParser struct {
	logger *zap.Logger
}

func NewActionParser(l *zap.Logger) *ActionParser {
	return &ActionParser{
		logger: l,
	}
}

// ParseAction parses one main action. Unknown kinds return an empty slice.
func (ap *ActionParser) ParseAction(txnHash string, action *nearTypes.ActionInfo) []nearTypes.ParsedAction {
	out := make([]nearTypes.ParsedAction, 0)
	if action == nil {
		return out
	}

	kind := nearTypes.NormalizeActionKind(action.ActionKind)
	if kind == nearTypes.ActionKind_Delegate {
		return ap.parseDelegate(txnHash, action)
	}

	actionType, ok := actionTypes[kind]
	if !ok {
		ap.logger.Sugar().Debugw("Unknown action kind",
			zap.String("actionKind", action.ActionKind),
			zap.String("txnHash", txnHash),
		)
		return out
	}
	return append(out, &BaseAction{
		Type:      actionType,
		Details:   details(kind, action.Args),
		From:      action.From,
		To:        action.To,
		ReceiptId: action.ReceiptId,
		TxnHash:   txnHash,
	})
}

// parseDelegate flattens a signed delegate action. The relayed actions are
// read from delegate_action.actions, or from actions when the delegate action
// fields sit at the top level of the args.
func (ap *ActionParser) parseDelegate(txnHash string, action *nearTypes.ActionInfo) []nearTypes.ParsedAction {
	out := make([]nearTypes.ParsedAction, 0)

	delegate := action.Args
	if inner := action.Args.Map("delegate_action"); inner != nil {
		delegate = nearTypes.ActionArgs(inner)
	}
	from := delegate.String("sender_id")
	if from == "" {
		from = action.From
	}
	to := delegate.String("receiver_id")
	if to == "" {
		to = action.To
	}

	items, _ := delegate["actions"].([]interface{})
	for i, item := range items {
		kind, args := relayedAction(item)
		actionType, ok := actionTypes[kind]
		if !ok {
			ap.logger.Sugar().Debugw("Skipping relayed action",
				zap.String("actionKind", string(kind)),
				zap.Int("delegateIndex", i),
				zap.String("txnHash", txnHash),
			)
			continue
		}
		index := i
		out = append(out, &BaseAction{
			Type:          actionType,
			Details:       details(kind, args),
			From:          from,
			To:            to,
			ReceiptId:     action.ReceiptId,
			TxnHash:       txnHash,
			DelegateIndex: &index,
		})
	}
	return out
}

// relayedAction reads an action nested in a delegate action. Indexer items
// are {"action_kind": ..., "args": {...}}, RPC items a single keyed object
// {"FunctionCall": {...}} or a bare kind string.
func relayedAction(item interface{}) (nearTypes.ActionKind, nearTypes.ActionArgs) {
	switch v := item.(type) {
	case string:
		return nearTypes.NormalizeActionKind(v), nearTypes.ActionArgs{}
	case map[string]interface{}:
		if kind, ok := v["action_kind"].(string); ok {
			args, _ := v["args"].(map[string]interface{})
			return nearTypes.NormalizeActionKind(kind), nearTypes.ActionArgs(args)
		}
		if len(v) == 1 {
			for key, value := range v {
				args, _ := value.(map[string]interface{})
				return nearTypes.NormalizeActionKind(key), nearTypes.ActionArgs(args)
			}
		}
	}
	return "", nil
}

func details(kind nearTypes.ActionKind, args nearTypes.ActionArgs) map[string]interface{} {
	switch kind {
	case nearTypes.ActionKind_Transfer:
		return map[string]interface{}{
			"deposit": args.Amount("deposit").String(),
		}
	case nearTypes.ActionKind_FunctionCall:
		return map[string]interface{}{
			"method_name": args.String("method_name"),
			"deposit":     args.Amount("deposit").String(),
			"gas":         args.Amount("gas").String(),
			"args":        callArgs(args),
		}
	case nearTypes.ActionKind_Stake:
		return map[string]interface{}{
			"stake":      args.Amount("stake").String(),
			"public_key": args.String("public_key"),
		}
	case nearTypes.ActionKind_DeployContract:
		d := map[string]interface{}{}
		if hash := args.String("code_sha256"); hash != "" {
			d["code_sha256"] = hash
		}
		return d
	case nearTypes.ActionKind_AddKey:
		return map[string]interface{}{
			"public_key": args.String("public_key"),
			"access_key": args["access_key"],
		}
	case nearTypes.ActionKind_DeleteKey:
		return map[string]interface{}{
			"public_key": args.String("public_key"),
		}
	case nearTypes.ActionKind_DeleteAccount:
		return map[string]interface{}{
			"beneficiary_id": args.String("beneficiary_id"),
		}
	}
	return map[string]interface{}{}
}

// callArgs prefers decoded JSON arguments over their base64 rendition.
func callArgs(args nearTypes.ActionArgs) interface{} {
	for _, key := range []string{"args_json", "args", "args_base64"} {
		if v, ok := args[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
