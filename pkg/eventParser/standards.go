package eventParser

import (
	"strings"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/tokenMetadata"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// tokenEventType maps ft_/mt_/nft_ event names onto transfer, mint or burn.
func tokenEventType(event string) string {
	idx := strings.Index(event, "_")
	if idx < 0 {
		return ""
	}
	switch event[idx+1:] {
	case "transfer":
		return EventType_Transfer
	case "mint":
		return EventType_Mint
	case "burn":
		return EventType_Burn
	}
	return ""
}

// parties reads the sender and recipient of a token event item.
func parties(eventType string, item gjson.Result) (string, string) {
	switch eventType {
	case EventType_Transfer:
		return item.Get("old_owner_id").String(), item.Get("new_owner_id").String()
	case EventType_Mint:
		return "", item.Get("owner_id").String()
	case EventType_Burn:
		return item.Get("owner_id").String(), ""
	}
	return "", ""
}

func (ep *EventParser) parseNep141(pc *parseContext, event *nearTypes.EventLog) []nearTypes.ParsedAction {
	eventType := tokenEventType(event.Event)
	if eventType == "" || !strings.HasPrefix(event.Event, "ft_") {
		return nil
	}

	var out []nearTypes.ParsedAction
	for _, raw := range event.DataItems() {
		item := gjson.ParseBytes(raw)
		amount, ok := decimalString(item.Get("amount").String())
		if !ok {
			ep.logger.Sugar().Debugw("Skipping nep141 item without a valid amount",
				zap.String("receiptId", pc.log.ReceiptId),
				zap.String("contract", pc.log.Contract),
			)
			continue
		}
		sender, recipient := parties(eventType, item)
		out = append(out, &TokenEvent{
			Type:      eventType,
			Standard:  event.Standard,
			Contract:  pc.log.Contract,
			ReceiptId: pc.log.ReceiptId,
			Sender:    sender,
			Recipient: recipient,
			Amount:    amount,
			Memo:      item.Get("memo").String(),
			Token:     pc.tokens.Lookup(pc.log.Contract, ""),
		})
	}
	return out
}

// parseNep245 emits one event per (item, token) pair. Items whose token_ids
// and amounts differ in length are skipped.
func (ep *EventParser) parseNep245(pc *parseContext, event *nearTypes.EventLog) []nearTypes.ParsedAction {
	eventType := tokenEventType(event.Event)
	if eventType == "" || !strings.HasPrefix(event.Event, "mt_") {
		return nil
	}

	var out []nearTypes.ParsedAction
	for _, raw := range event.DataItems() {
		item := gjson.ParseBytes(raw)
		tokenIds := item.Get("token_ids").Array()
		amounts := item.Get("amounts").Array()
		if len(tokenIds) != len(amounts) {
			ep.logger.Sugar().Debugw("Skipping nep245 item with mismatched token_ids and amounts",
				zap.String("receiptId", pc.log.ReceiptId),
				zap.Int("tokenIds", len(tokenIds)),
				zap.Int("amounts", len(amounts)),
			)
			continue
		}
		sender, recipient := parties(eventType, item)
		for i, tokenId := range tokenIds {
			amount, ok := decimalString(amounts[i].String())
			if !ok {
				continue
			}
			ref := tokenMetadata.ParseTokenRef(tokenId.String())
			out = append(out, &TokenEvent{
				Type:          eventType,
				Standard:      event.Standard,
				Contract:      pc.log.Contract,
				ReceiptId:     pc.log.ReceiptId,
				Sender:        sender,
				Recipient:     recipient,
				Amount:        amount,
				TokenId:       tokenId.String(),
				TokenContract: ref.Contract,
				Memo:          item.Get("memo").String(),
				Token:         pc.tokens.Lookup(ref.Contract, ref.TokenId),
			})
		}
	}
	return out
}

func (ep *EventParser) parseNep171(pc *parseContext, event *nearTypes.EventLog) []nearTypes.ParsedAction {
	eventType := tokenEventType(event.Event)
	if eventType == "" || !strings.HasPrefix(event.Event, "nft_") {
		return nil
	}

	var out []nearTypes.ParsedAction
	for _, raw := range event.DataItems() {
		item := gjson.ParseBytes(raw)
		sender, recipient := parties(eventType, item)
		for _, tokenId := range item.Get("token_ids").Array() {
			out = append(out, &TokenEvent{
				Type:      "nft_" + eventType,
				Standard:  event.Standard,
				Contract:  pc.log.Contract,
				ReceiptId: pc.log.ReceiptId,
				Sender:    sender,
				Recipient: recipient,
				TokenId:   tokenId.String(),
				Memo:      item.Get("memo").String(),
				Token:     pc.tokens.Lookup(pc.log.Contract, ""),
			})
		}
	}
	return out
}

// parseTokenDiff keeps the diff in emitted key order. A two token diff with
// opposite signs also gets its in and out legs.
func (ep *EventParser) parseTokenDiff(pc *parseContext, event *nearTypes.EventLog) []nearTypes.ParsedAction {
	var out []nearTypes.ParsedAction
	for _, raw := range event.DataItems() {
		item := gjson.ParseBytes(raw)
		diff := item.Get("diff")
		if !diff.IsObject() {
			continue
		}

		ev := &TokenDiffEvent{
			Type:       EventType_TokenDiff,
			Contract:   pc.log.Contract,
			ReceiptId:  pc.log.ReceiptId,
			AccountId:  item.Get("account_id").String(),
			IntentHash: item.Get("intent_hash").String(),
			Diff:       []TokenDelta{},
		}
		amounts := make([]decimal.Decimal, 0, 2)
		valid := true
		diff.ForEach(func(key, value gjson.Result) bool {
			d, err := decimal.NewFromString(value.String())
			if err != nil {
				valid = false
				return false
			}
			ev.Diff = append(ev.Diff, TokenDelta{Token: key.String(), Amount: d.String()})
			amounts = append(amounts, d)
			return true
		})
		if !valid {
			ep.logger.Sugar().Debugw("Skipping token_diff item with a non numeric amount",
				zap.String("receiptId", pc.log.ReceiptId),
			)
			continue
		}

		if len(ev.Diff) == 2 && amounts[0].Sign()*amounts[1].Sign() < 0 {
			in, outIdx := 0, 1
			if amounts[0].IsPositive() {
				in, outIdx = 1, 0
			}
			ev.TokenIn = ev.Diff[in].Token
			ev.AmountIn = amounts[in].Abs().String()
			ev.TokenInMeta = pc.lookupToken(ev.TokenIn)
			ev.TokenOut = ev.Diff[outIdx].Token
			ev.AmountOut = amounts[outIdx].String()
			ev.TokenOutMeta = pc.lookupToken(ev.TokenOut)
		}
		out = append(out, ev)
	}
	return out
}

func (ep *EventParser) parseBurrow(pc *parseContext, event *nearTypes.EventLog) []nearTypes.ParsedAction {
	var out []nearTypes.ParsedAction
	for _, raw := range event.DataItems() {
		item := gjson.ParseBytes(raw)
		amount, ok := decimalString(item.Get("amount").String())
		if !ok {
			continue
		}
		tokenId := item.Get("token_id").String()
		out = append(out, &BurrowEvent{
			Type:      event.Event,
			Contract:  pc.log.Contract,
			ReceiptId: pc.log.ReceiptId,
			Data: BurrowData{
				TokenId:   tokenId,
				AccountId: item.Get("account_id").String(),
				Amount:    amount,
			},
			Token: pc.tokens.Lookup(tokenId, ""),
		})
	}
	return out
}
