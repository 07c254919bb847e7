package nearTypes

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ActionKind string

const (
	ActionKind_Transfer       ActionKind = "TRANSFER"
	ActionKind_FunctionCall   ActionKind = "FUNCTIONCALL"
	ActionKind_Stake          ActionKind = "STAKE"
	ActionKind_Delegate       ActionKind = "DELEGATE"
	ActionKind_DeployContract ActionKind = "DEPLOYCONTRACT"
	ActionKind_AddKey         ActionKind = "ADDKEY"
	ActionKind_DeleteKey      ActionKind = "DELETEKEY"
	ActionKind_DeleteAccount  ActionKind = "DELETEACCOUNT"
	ActionKind_CreateAccount  ActionKind = "CREATEACCOUNT"
)

// NormalizeActionKind maps both the indexer spelling (FUNCTION_CALL,
// DELEGATE_ACTION) and the RPC spelling (FunctionCall, Delegate) onto one
// upper-cased, underscore-free kind. Unknown kinds pass through normalized.
func NormalizeActionKind(kind string) ActionKind {
	k := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(kind), "_", ""))
	if k == "DELEGATEACTION" || k == "SIGNEDDELEGATE" {
		return ActionKind_Delegate
	}
	return ActionKind(k)
}

// ActionInfo is one top-level signed action of a transaction.
type ActionInfo struct {
	From       string           `json:"from"`
	To         string           `json:"to"`
	ReceiptId  string           `json:"receiptId"`
	ActionKind string           `json:"action_kind"`
	Args       ActionArgs       `json:"args"`
	Logs       []TransactionLog `json:"logs"`
	ActionsLog []ActionLogEntry `json:"actionsLog"`
}

// ActionLogEntry carries the decoded call arguments of one top-level action.
type ActionLogEntry struct {
	ActionKind string        `json:"action_kind"`
	Args       ActionLogArgs `json:"args"`
}

type ActionLogArgs struct {
	Deposit    decimal.Decimal `json:"deposit"`
	Gas        decimal.Decimal `json:"gas"`
	MethodName string          `json:"method_name,omitempty"`
	Args       interface{}     `json:"args,omitempty"`
}

// ReceiptAction is an action found anywhere in the receipt tree.
type ReceiptAction struct {
	From       string     `json:"from"`
	To         string     `json:"to"`
	ReceiptId  string     `json:"receiptId"`
	ActionKind string     `json:"action_kind"`
	Args       ActionArgs `json:"args"`
}

// ParsedAction is one entry of the final action list. Implementations are the
// structural actions of the action parser and the events of the event parser.
type ParsedAction interface {
	ActionType() string
}
