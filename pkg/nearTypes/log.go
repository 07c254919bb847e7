package nearTypes

import (
	"encoding/json"
)

// TransactionLog is one log line emitted while executing a receipt.
type TransactionLog struct {
	Contract  string     `json:"contract"`
	Logs      LogPayload `json:"logs"`
	ReceiptId string     `json:"receiptId,omitempty"`
}

// LogPayload is the content of a TransactionLog. Exactly one rendition is
// meaningful:
//   - Event: the line was an EVENT_JSON: envelope and decoded
//   - Malformed: the line was an EVENT_JSON: envelope that could not be decoded
//   - Action: the entry stands in for an actionsLog record
//   - otherwise Raw holds the line as emitted
type LogPayload struct {
	Raw       string
	Event     *EventLog
	Malformed bool
	Action    *ActionLogEntry
}

func RawPayload(line string) LogPayload {
	return LogPayload{Raw: line}
}

// IsString reports whether the payload is a plain, undecoded log sentence.
func (p LogPayload) IsString() bool {
	return p.Event == nil && !p.Malformed && p.Action == nil
}

func (p LogPayload) MarshalJSON() ([]byte, error) {
	switch {
	case p.Event != nil:
		return json.RawMessage(p.Event.Json), nil
	case p.Malformed:
		return []byte("null"), nil
	case p.Action != nil:
		return json.Marshal(p.Action)
	default:
		return json.Marshal(p.Raw)
	}
}

// EventLog is a decoded NEP-297 event envelope.
type EventLog struct {
	Standard string          `json:"standard"`
	Version  string          `json:"version"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`

	// Json is the decoded envelope text.
	Json string `json:"-"`
}

// DataItems splits Data into its array items. A single object is treated as a
// one item array.
func (e *EventLog) DataItems() []json.RawMessage {
	if e == nil || len(e.Data) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(e.Data, &items); err == nil {
		return items
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &obj); err == nil {
		return []json.RawMessage{e.Data}
	}
	return nil
}
