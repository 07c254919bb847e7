package nearTypes

import (
	"encoding/json"
)

// ReceiptApiResponse is the indexer's v2/txns/{hash}/receipts payload.
type ReceiptApiResponse struct {
	Receipts []ReceiptTreeRoot `json:"receipts"`
}

type ReceiptTreeRoot struct {
	ReceiptTree *ReceiptTree `json:"receipt_tree"`
}

// Root returns the first receipt tree, or nil.
func (r *ReceiptApiResponse) Root() *ReceiptTree {
	if r == nil || len(r.Receipts) == 0 {
		return nil
	}
	return r.Receipts[0].ReceiptTree
}

// ReceiptTree is one receipt and, recursively, the receipts it produced.
type ReceiptTree struct {
	ReceiptId            string              `json:"receipt_id"`
	PredecessorAccountId string              `json:"predecessor_account_id"`
	ReceiverAccountId    string              `json:"receiver_account_id"`
	PublicKey            string              `json:"public_key,omitempty"`
	Block                *Block              `json:"block,omitempty"`
	Actions              []ReceiptTreeAction `json:"actions,omitempty"`
	Outcome              ReceiptTreeOutcome  `json:"outcome"`
	Receipts             []*ReceiptTree      `json:"receipts,omitempty"`
}

type ReceiptTreeAction struct {
	ActionKind string          `json:"action_kind"`
	Args       json.RawMessage `json:"args,omitempty"`
	RlpHash    *string         `json:"rlp_hash"`
}

type ReceiptTreeOutcome struct {
	Logs              []string        `json:"logs"`
	Result            FlexString      `json:"result,omitempty"`
	StatusKey         string          `json:"status_key,omitempty"`
	Status            json.RawMessage `json:"status,omitempty"`
	GasBurnt          Amount          `json:"gas_burnt"`
	TokensBurnt       Amount          `json:"tokens_burnt"`
	ExecutorAccountId string          `json:"executor_account_id"`
}

// TransformedReceipt is the canonical, cleaned rendition of a ReceiptTree.
type TransformedReceipt struct {
	ReceiptId     string              `json:"receipt_id"`
	PredecessorId string              `json:"predecessor_id"`
	ReceiverId    string              `json:"receiver_id"`
	BlockHash     string              `json:"block_hash,omitempty"`
	BlockHeight   *uint64             `json:"block_height"`
	Actions       []TransformedAction `json:"actions,omitempty"`
	Outcome       TransformedOutcome  `json:"outcome"`
	PublicKey     string              `json:"public_key,omitempty"`
}

type TransformedAction struct {
	ActionKind string     `json:"action_kind"`
	Args       ActionArgs `json:"args"`
	RlpHash    *string    `json:"rlp_hash"`
}

type TransformedOutcome struct {
	Logs              []string              `json:"logs"`
	Status            ReceiptStatus         `json:"status"`
	GasBurnt          Amount                `json:"gas_burnt"`
	TokensBurnt       Amount                `json:"tokens_burnt"`
	ExecutorAccountId string                `json:"executor_account_id,omitempty"`
	OutgoingReceipts  []*TransformedReceipt `json:"outgoing_receipts"`
}

// ReceiptStatus has exactly one member set.
type ReceiptStatus struct {
	SuccessValue     *string         `json:"SuccessValue,omitempty"`
	SuccessReceiptId *string         `json:"SuccessReceiptId,omitempty"`
	Failure          *ReceiptFailure `json:"Failure,omitempty"`
}

type ReceiptFailure struct {
	ErrorMessage string `json:"error_message"`
}

const (
	StatusKey_SuccessValue     = "SUCCESS_VALUE"
	StatusKey_SuccessReceiptId = "SUCCESS_RECEIPT_ID"
	StatusKey_Failure          = "FAILURE"
)
