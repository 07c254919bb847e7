package eventParser

import (
	"github.com/nearblocks/txns-action/pkg/nearTypes"
)

const (
	EventType_Transfer = "transfer"
	EventType_Mint     = "mint"
	EventType_Burn     = "burn"

	EventType_NftTransfer = "nft_transfer"
	EventType_NftMint     = "nft_mint"
	EventType_NftBurn     = "nft_burn"

	EventType_TokenDiff = "token_diff"

	EventType_RefSwap     = "ref_swap"
	EventType_RefDeposit  = "ref_deposit"
	EventType_RefWithdraw = "ref_withdraw"

	EventType_WrapDeposit  = "wrap_deposit"
	EventType_WrapWithdraw = "wrap_withdraw"
)

// Burrow lending events, named as the burrow contract emits them.
var BurrowEvents = []string{
	"deposit",
	"deposit_to_reserve",
	"withdraw_succeeded",
	"increase_collateral",
	"decrease_collateral",
	"borrow",
	"repay",
}

// TokenEvent is a fungible, multi-token or NFT movement. Standard is empty for
// events parsed from legacy log sentences.
type TokenEvent struct {
	Type          string                   `json:"type"`
	Standard      string                   `json:"standard,omitempty"`
	Contract      string                   `json:"contract"`
	ReceiptId     string                   `json:"receiptId"`
	Sender        string                   `json:"sender,omitempty"`
	Recipient     string                   `json:"recipient,omitempty"`
	Amount        string                   `json:"amount,omitempty"`
	TokenId       string                   `json:"token_id,omitempty"`
	TokenContract string                   `json:"tokenContract,omitempty"`
	Memo          string                   `json:"memo,omitempty"`
	Token         *nearTypes.TokenMetadata `json:"token"`
}

func (e *TokenEvent) ActionType() string { return e.Type }

type TokenDelta struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// TokenDiffEvent is a dip4 token_diff. When the diff is a pair with opposite
// signs it is also read as a swap: TokenIn is what the account gave up and
// TokenOut what it received.
type TokenDiffEvent struct {
	Type         string                   `json:"type"`
	Contract     string                   `json:"contract"`
	ReceiptId    string                   `json:"receiptId"`
	AccountId    string                   `json:"account_id,omitempty"`
	IntentHash   string                   `json:"intent_hash,omitempty"`
	Diff         []TokenDelta             `json:"diff"`
	TokenIn      string                   `json:"tokenIn,omitempty"`
	AmountIn     string                   `json:"amountIn,omitempty"`
	TokenInMeta  *nearTypes.TokenMetadata `json:"tokenInMeta,omitempty"`
	TokenOut     string                   `json:"tokenOut,omitempty"`
	AmountOut    string                   `json:"amountOut,omitempty"`
	TokenOutMeta *nearTypes.TokenMetadata `json:"tokenOutMeta,omitempty"`
}

func (e *TokenDiffEvent) ActionType() string { return e.Type }

type SwapEvent struct {
	Type         string                   `json:"type"`
	Contract     string                   `json:"contract"`
	ReceiptId    string                   `json:"receiptId"`
	Platform     string                   `json:"platform"`
	Sender       string                   `json:"sender,omitempty"`
	AmountIn     string                   `json:"amountIn"`
	TokenIn      string                   `json:"tokenIn"`
	TokenInMeta  *nearTypes.TokenMetadata `json:"tokenInMeta"`
	AmountOut    string                   `json:"amountOut"`
	TokenOut     string                   `json:"tokenOut"`
	TokenOutMeta *nearTypes.TokenMetadata `json:"tokenOutMeta"`
}

func (e *SwapEvent) ActionType() string { return e.Type }

// AccountEvent is a deposit or withdrawal of one token into or out of a
// contract: Ref Finance and wrap.near.
type AccountEvent struct {
	Type          string                   `json:"type"`
	Contract      string                   `json:"contract"`
	ReceiptId     string                   `json:"receiptId"`
	Sender        string                   `json:"sender,omitempty"`
	Recipient     string                   `json:"recipient,omitempty"`
	Amount        string                   `json:"amount"`
	TokenContract string                   `json:"tokenContract,omitempty"`
	Token         *nearTypes.TokenMetadata `json:"token"`
}

func (e *AccountEvent) ActionType() string { return e.Type }

type BurrowData struct {
	TokenId   string `json:"token_id"`
	AccountId string `json:"account_id"`
	Amount    string `json:"amount"`
}

type BurrowEvent struct {
	Type      string                   `json:"type"`
	Contract  string                   `json:"contract"`
	ReceiptId string                   `json:"receiptId"`
	Data      BurrowData               `json:"data"`
	Token     *nearTypes.TokenMetadata `json:"token"`
}

func (e *BurrowEvent) ActionType() string { return e.Type }
