package rpcServer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/pipeline"
	"github.com/thedevsaddam/govalidator"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

func init() {
	govalidator.AddCustomRule("near.jsonObject", jsonObjectRule)
	govalidator.AddCustomRule("near.blockHeight", blockHeightRule)
}

func rawJson(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case json.RawMessage:
		return v, true
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	}
	return nil, false
}

func jsonObjectRule(field string, rule string, message string, value interface{}) error {
	raw, ok := rawJson(value)
	if !ok {
		return fmt.Errorf("The %s field must be a JSON object", field)
	}
	if len(raw) == 0 {
		return nil
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return fmt.Errorf("The %s field must be a JSON object", field)
	}
	return nil
}

// blockHeightRule requires a positive integer block.block_height. The source
// of the actions is chosen from it.
func blockHeightRule(field string, rule string, message string, value interface{}) error {
	raw, ok := rawJson(value)
	if !ok || len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	height := gjson.GetBytes(raw, "block.block_height")
	if height.Type != gjson.Number || height.Uint() == 0 || height.Raw != strconv.FormatUint(height.Uint(), 10) {
		return fmt.Errorf("The %s field must have a positive integer block.block_height", field)
	}
	return nil
}

type txnsActionRequest struct {
	Txns     json.RawMessage `json:"txns"`
	Receipts json.RawMessage `json:"receipts"`
}

type txnsActionResponse struct {
	Actions []nearTypes.ParsedAction `json:"Actions"`
}

// normalizeTxnsBody accepts {"transaction": ...} as an alias of {"txns": ...}.
func normalizeTxnsBody(body []byte) []byte {
	if !gjson.ValidBytes(body) {
		return body
	}
	parsed := gjson.ParseBytes(body)
	if parsed.Get("txns").Exists() {
		return body
	}
	alias := parsed.Get("transaction")
	if !alias.Exists() {
		return body
	}
	receipts := parsed.Get("receipts")
	if receipts.Exists() {
		return []byte(fmt.Sprintf(`{"txns":%s,"receipts":%s}`, alias.Raw, receipts.Raw))
	}
	return []byte(fmt.Sprintf(`{"txns":%s}`, alias.Raw))
}

func validateTxnsActionRequest(r *http.Request, request *txnsActionRequest) url.Values {
	v := govalidator.New(govalidator.Options{
		Request: r,
		Data:    request,
		Rules: govalidator.MapData{
			"txns":     []string{"required", "near.jsonObject", "near.blockHeight"},
			"receipts": []string{"near.jsonObject"},
		},
	})
	return v.ValidateJSON()
}

// extractTxnsActionRequest reads and validates the body. A non-empty url.Values
// means the request must be answered with a validation error.
func (rpc *RpcServer) extractTxnsActionRequest(w http.ResponseWriter, r *http.Request) (*pipeline.ParseRequest, url.Values) {
	hash := strings.TrimSpace(mux.Vars(r)["hash"])
	if hash == "" {
		return nil, url.Values{"hash": []string{"The hash field is required"}}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, rpc.config.MaxBodyBytes))
	if err != nil {
		return nil, url.Values{"_error": []string{err.Error()}}
	}
	r.Body = io.NopCloser(bytes.NewReader(normalizeTxnsBody(body)))

	request := &txnsActionRequest{}
	if errs := validateTxnsActionRequest(r, request); len(errs) > 0 {
		return nil, errs
	}

	txn := &nearTypes.ApiTransaction{}
	if err := nearTypes.UnmarshalUseNumber(request.Txns, txn); err != nil {
		return nil, url.Values{"txns": []string{"The txns field must be an indexer transaction"}}
	}

	var receipts *nearTypes.ReceiptApiResponse
	if len(request.Receipts) > 0 && string(request.Receipts) != "null" {
		receipts = &nearTypes.ReceiptApiResponse{}
		if err := nearTypes.UnmarshalUseNumber(request.Receipts, receipts); err != nil {
			return nil, url.Values{"receipts": []string{"The receipts field must be a receipt tree"}}
		}
	}

	return &pipeline.ParseRequest{
		TxnHash:     hash,
		Transaction: txn,
		Receipts:    receipts,
	}, nil
}

func (rpc *RpcServer) handleTxnsAction(w http.ResponseWriter, r *http.Request) {
	req, errs := rpc.extractTxnsActionRequest(w, r)
	if len(errs) > 0 {
		rpc.Logger.Sugar().Debugw("Rejected txnsaction request",
			zap.String("requestId", RequestIdFromContext(r.Context())),
			zap.Any("errors", errs),
		)
		writeValidationError(w, errs)
		return
	}

	result, err := rpc.parser.ParseTransaction(r.Context(), req)
	if err != nil {
		rpc.Logger.Sugar().Errorw("Failed to parse transaction",
			zap.String("requestId", RequestIdFromContext(r.Context())),
			zap.String("hash", req.TxnHash),
			zap.Error(err),
		)
		writeServerError(w)
		return
	}

	actions := result.Actions
	if actions == nil {
		actions = make([]nearTypes.ParsedAction, 0)
	}
	writeJSON(w, http.StatusOK, &txnsActionResponse{Actions: actions})
}
