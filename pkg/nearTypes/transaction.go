// Package nearTypes holds the data model shared by every stage of the action
// normalization pipeline: the indexer (API) and RPC views of a transaction, the
// receipt tree, extracted logs, normalized actions and token metadata.
package nearTypes

import (
	"encoding/json"
)

type Block struct {
	BlockHash      string     `json:"block_hash,omitempty"`
	BlockHeight    uint64     `json:"block_height"`
	BlockTimestamp FlexString `json:"block_timestamp,omitempty"`
}

// ApiTransaction is the indexer's view of a transaction.
type ApiTransaction struct {
	TransactionHash     string       `json:"transaction_hash"`
	IncludedInBlockHash string       `json:"included_in_block_hash,omitempty"`
	SignerAccountId     string       `json:"signer_account_id"`
	ReceiverAccountId   string       `json:"receiver_account_id"`
	Block               Block        `json:"block"`
	Actions             []ApiAction  `json:"actions"`
	ActionsAgg          ActionsAgg   `json:"actions_agg"`
	OutcomesAgg         OutcomesAgg  `json:"outcomes_agg"`
	Receipts            []ApiReceipt `json:"receipts"`
}

type ApiAction struct {
	Action  string          `json:"action"`
	Method  string          `json:"method,omitempty"`
	Deposit Amount          `json:"deposit"`
	Fee     Amount          `json:"fee"`
	Args    json.RawMessage `json:"args,omitempty"`
}

type ActionsAgg struct {
	Deposit     Amount `json:"deposit"`
	GasAttached Amount `json:"gas_attached"`
}

type OutcomesAgg struct {
	TransactionFee Amount `json:"transaction_fee"`
	GasUsed        Amount `json:"gas_used"`
}

type ApiReceipt struct {
	ReceiptId            string            `json:"receipt_id"`
	PredecessorAccountId string            `json:"predecessor_account_id,omitempty"`
	ReceiverAccountId    string            `json:"receiver_account_id,omitempty"`
	Block                Block             `json:"block"`
	Outcome              ApiReceiptOutcome `json:"outcome"`
}

type ApiReceiptOutcome struct {
	GasBurnt          Amount          `json:"gas_burnt"`
	TokensBurnt       Amount          `json:"tokens_burnt"`
	ExecutorAccountId string          `json:"executor_account_id"`
	Status            json.RawMessage `json:"status,omitempty"`
	Logs              []string        `json:"logs"`
}

// RpcTransaction is the node's EXPERIMENTAL_tx_status / tx view of a transaction.
type RpcTransaction struct {
	Transaction        RpcSignedTransaction     `json:"transaction"`
	TransactionOutcome ExecutionOutcomeWithId   `json:"transaction_outcome"`
	ReceiptsOutcome    []ExecutionOutcomeWithId `json:"receipts_outcome"`
	Status             json.RawMessage          `json:"status,omitempty"`
}

type RpcSignedTransaction struct {
	Hash       string            `json:"hash"`
	SignerId   string            `json:"signer_id"`
	ReceiverId string            `json:"receiver_id"`
	PublicKey  string            `json:"public_key,omitempty"`
	Nonce      FlexString        `json:"nonce,omitempty"`
	Actions    []json.RawMessage `json:"actions"`
}

type ExecutionOutcomeWithId struct {
	Id        string           `json:"id"`
	BlockHash string           `json:"block_hash"`
	Outcome   ExecutionOutcome `json:"outcome"`
}

type ExecutionOutcome struct {
	Logs        []string        `json:"logs"`
	ReceiptIds  []string        `json:"receipt_ids"`
	GasBurnt    Amount          `json:"gas_burnt"`
	TokensBurnt Amount          `json:"tokens_burnt"`
	ExecutorId  string          `json:"executor_id"`
	Status      json.RawMessage `json:"status,omitempty"`
}

type RpcBlockHeader struct {
	Height    uint64     `json:"height"`
	Hash      string     `json:"hash"`
	Timestamp FlexString `json:"timestamp"`
}

type RpcBlock struct {
	Author string         `json:"author"`
	Header RpcBlockHeader `json:"header"`
}
