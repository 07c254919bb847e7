// Package eventParser turns log entries into typed events: token standard
// events (nep141, nep245, nep171), dip4 token diffs, burrow lending events and
// the free text sentences of Ref Finance, wrap.near and older token contracts.
package eventParser

import (
	"github.com/nearblocks/txns-action/internal/config"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/tokenMetadata"
	"github.com/nearblocks/txns-action/pkg/transactionLogParser"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EventParser struct {
	registry *config.ContractRegistry
	logger   *zap.Logger
}

func NewEventParser(registry *config.ContractRegistry, l *zap.Logger) *EventParser {
	return &EventParser{
		registry: registry,
		logger:   l,
	}
}

// parseContext carries what every parser needs for one log entry.
type parseContext struct {
	log        nearTypes.TransactionLog
	tokens     nearTypes.TokenMetadataMap
	allActions []nearTypes.ReceiptAction
}

// ParseEventLogs returns the events of one log entry. Entries that match no
// known grammar, and items that fail to parse, contribute nothing.
func (ep *EventParser) ParseEventLogs(
	log nearTypes.TransactionLog,
	tokens nearTypes.TokenMetadataMap,
	allActions []nearTypes.ReceiptAction,
) []nearTypes.ParsedAction {
	pc := &parseContext{log: log, tokens: tokens, allActions: allActions}
	payload := transactionLogParser.Decode(log.Logs)

	var events []nearTypes.ParsedAction
	switch ep.Classify(log) {
	case LogKind_Nep141:
		events = ep.parseNep141(pc, payload.Event)
	case LogKind_Nep245:
		events = ep.parseNep245(pc, payload.Event)
	case LogKind_Nep171:
		events = ep.parseNep171(pc, payload.Event)
	case LogKind_Dip4:
		events = ep.parseTokenDiff(pc, payload.Event)
	case LogKind_Burrow:
		events = ep.parseBurrow(pc, payload.Event)
	case LogKind_RefSwap:
		events = ep.parseRefSwap(pc, payload.Raw)
	case LogKind_RefDeposit:
		events = ep.parseRefTransfer(pc, payload.Raw, EventType_RefDeposit)
	case LogKind_RefWithdraw:
		events = ep.parseRefTransfer(pc, payload.Raw, EventType_RefWithdraw)
	case LogKind_WrapDeposit:
		events = ep.parseWrap(pc, payload.Raw, EventType_WrapDeposit)
	case LogKind_WrapWithdraw:
		events = ep.parseWrap(pc, payload.Raw, EventType_WrapWithdraw)
	case LogKind_LegacyTransfer:
		events = ep.parseLegacyTransfer(pc, payload.Raw)
	case LogKind_LegacyBurn:
		events = ep.parseLegacyBurn(pc, payload.Raw)
	}
	if events == nil {
		return []nearTypes.ParsedAction{}
	}
	return events
}

// lookupToken resolves a token reference ("standard:contract[:token_id]" or a
// bare contract). A miss is nil.
func (pc *parseContext) lookupToken(token string) *nearTypes.TokenMetadata {
	ref := tokenMetadata.ParseTokenRef(token)
	return pc.tokens.Lookup(ref.Contract, ref.TokenId)
}

// receiptAction returns the first action executed by the log's receipt.
func (pc *parseContext) receiptAction() *nearTypes.ReceiptAction {
	if pc.log.ReceiptId == "" {
		return nil
	}
	for i := range pc.allActions {
		if pc.allActions[i].ReceiptId == pc.log.ReceiptId {
			return &pc.allActions[i]
		}
	}
	return nil
}

// sender is the account on whose behalf the log's receipt ran: the sender_id
// of a token callback when present, otherwise the receipt's predecessor.
func (pc *parseContext) sender() string {
	action := pc.receiptAction()
	if action == nil {
		return ""
	}
	if inner := nearTypes.ActionArgs(action.Args.Map("args_json")); inner != nil {
		if sender := inner.String("sender_id"); sender != "" {
			return sender
		}
	}
	return action.From
}

// decimalString validates an amount and renders it without exponent.
func decimalString(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false
	}
	return d.String(), true
}
