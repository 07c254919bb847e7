// Package transactionLogParser extracts the log lines emitted by a
// transaction's receipts and decodes NEP-297 EVENT_JSON envelopes.
package transactionLogParser

import (
	"encoding/json"
	"strings"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"go.uber.org/zap"
)

const EventJsonPrefix = "EVENT_JSON:"

// TransactionLogParser flattens receipt outcomes into TransactionLogs.
type TransactionLogParser struct {
	logger *zap.Logger
}

func NewTransactionLogParser(logger *zap.Logger) *TransactionLogParser {
	return &TransactionLogParser{
		logger: logger,
	}
}

// ExtractApiLogs returns one TransactionLog per log line of every indexer
// receipt, in receipt order then line order. Lines are EVENT_JSON decoded.
func (tlp *TransactionLogParser) ExtractApiLogs(txn *nearTypes.ApiTransaction) []nearTypes.TransactionLog {
	logs := make([]nearTypes.TransactionLog, 0)
	if txn == nil {
		return logs
	}

	for _, receipt := range txn.Receipts {
		for _, line := range receipt.Outcome.Logs {
			payload := ParseEventJson(line)
			if payload.Malformed {
				tlp.logger.Sugar().Debugw("Failed to decode EVENT_JSON log",
					zap.String("receiptId", receipt.ReceiptId),
					zap.String("contract", receipt.Outcome.ExecutorAccountId),
				)
			}
			logs = append(logs, nearTypes.TransactionLog{
				Contract:  receipt.Outcome.ExecutorAccountId,
				Logs:      payload,
				ReceiptId: receipt.ReceiptId,
			})
		}
	}
	return logs
}

// ExtractRpcLogs returns one TransactionLog per log line of every RPC receipt
// outcome. Lines are kept as raw strings.
func (tlp *TransactionLogParser) ExtractRpcLogs(txn *nearTypes.RpcTransaction) []nearTypes.TransactionLog {
	logs := make([]nearTypes.TransactionLog, 0)
	if txn == nil {
		return logs
	}

	for _, outcome := range txn.ReceiptsOutcome {
		for _, line := range outcome.Outcome.Logs {
			logs = append(logs, nearTypes.TransactionLog{
				Contract:  outcome.Outcome.ExecutorId,
				Logs:      nearTypes.RawPayload(line),
				ReceiptId: outcome.Id,
			})
		}
	}
	return logs
}

// ParseEventJson decodes an EVENT_JSON: line. Lines without the prefix are
// returned as raw strings. An undecodable envelope gets one repair attempt that
// un-escapes quotes, after which it is marked malformed.
func ParseEventJson(line string) nearTypes.LogPayload {
	if !strings.HasPrefix(line, EventJsonPrefix) {
		return nearTypes.RawPayload(line)
	}

	body := strings.TrimSpace(strings.Replace(line, EventJsonPrefix, "", 1))

	if event, ok := decodeEvent(body); ok {
		return nearTypes.LogPayload{Raw: line, Event: event}
	}

	fixed := strings.ReplaceAll(body, `\"`, `"`)
	if event, ok := decodeEvent(fixed); ok {
		return nearTypes.LogPayload{Raw: line, Event: event}
	}

	return nearTypes.LogPayload{Raw: line, Malformed: true}
}

// Decode returns the structured rendition of a payload, decoding raw
// EVENT_JSON lines on the fly.
func Decode(payload nearTypes.LogPayload) nearTypes.LogPayload {
	if payload.IsString() {
		return ParseEventJson(payload.Raw)
	}
	return payload
}

// IsStandard reports whether the payload decodes to an event of the given
// standard.
func IsStandard(payload nearTypes.LogPayload, standard string) bool {
	decoded := Decode(payload)
	return decoded.Event != nil && decoded.Event.Standard == standard
}

func isValidJson(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid([]byte(trimmed))
}

func decodeEvent(s string) (*nearTypes.EventLog, bool) {
	if !isValidJson(s) {
		return nil, false
	}
	event := &nearTypes.EventLog{Json: s}
	if strings.HasPrefix(s, "{") {
		// envelope fields of an unexpected type are left empty
		_ = json.Unmarshal([]byte(s), event)
		event.Json = s
	}
	return event, true
}
