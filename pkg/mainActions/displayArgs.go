package mainActions

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
)

const EmptyArgsMessage = "The arguments are empty"

// DisplayArgs renders base64 function call arguments as indented JSON, with
// nested base64 JSON values decoded in place. Absent arguments render as
// EmptyArgsMessage, anything undecodable as an empty string.
func DisplayArgs(args interface{}) string {
	encoded, ok := args.(string)
	if args == nil || (ok && encoded == "") {
		return EmptyArgsMessage
	}
	if !ok {
		return ""
	}

	decoded, ok := decodeBase64(encoded)
	if !ok || !isJsonContainer(decoded) {
		return ""
	}

	var parsed interface{}
	if err := nearTypes.UnmarshalUseNumber(decoded, &parsed); err != nil {
		return ""
	}

	pretty, err := json.MarshalIndent(ParseNestedJSON(parsed), "", "  ")
	if err != nil {
		return ""
	}
	return string(pretty)
}

// ParseNestedJSON walks v and replaces every string member of an object that
// is base64 encoded JSON with its decoded value.
func ParseNestedJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = ParseNestedJSON(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			switch inner := val.(type) {
			case string:
				out[k] = decodeNestedString(inner)
			default:
				out[k] = ParseNestedJSON(inner)
			}
		}
		return out
	default:
		return v
	}
}

func decodeNestedString(s string) interface{} {
	decoded, ok := decodeBase64(s)
	if !ok || len(decoded) == 0 || !json.Valid(decoded) {
		return s
	}
	var parsed interface{}
	if err := nearTypes.UnmarshalUseNumber(decoded, &parsed); err != nil {
		return s
	}
	return parsed
}

func decodeBase64(s string) ([]byte, bool) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, true
	}
	if b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); err == nil {
		return b, true
	}
	return nil, false
}

func isJsonContainer(b []byte) bool {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid([]byte(trimmed))
}
