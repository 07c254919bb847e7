package eventParser

import (
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"go.uber.org/zap"
)

const Platform_RefFinance = "Ref Finance"

// parseRefSwap reads "Swapped <n> <token in> for <n> <token out>".
func (ep *EventParser) parseRefSwap(pc *parseContext, line string) []nearTypes.ParsedAction {
	match := refSwapPattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	amountIn, okIn := decimalString(match[1])
	amountOut, okOut := decimalString(match[3])
	if !okIn || !okOut {
		return nil
	}
	return []nearTypes.ParsedAction{&SwapEvent{
		Type:         EventType_RefSwap,
		Contract:     pc.log.Contract,
		ReceiptId:    pc.log.ReceiptId,
		Platform:     Platform_RefFinance,
		Sender:       pc.sender(),
		AmountIn:     amountIn,
		TokenIn:      match[2],
		TokenInMeta:  pc.tokens.Lookup(match[2], ""),
		AmountOut:    amountOut,
		TokenOut:     match[4],
		TokenOutMeta: pc.tokens.Lookup(match[4], ""),
	}}
}

// parseRefTransfer reads "Deposit <n> <token> to <account>" and
// "Withdraw <n> <token> from <account>".
func (ep *EventParser) parseRefTransfer(pc *parseContext, line string, eventType string) []nearTypes.ParsedAction {
	pattern := refDepositPattern
	if eventType == EventType_RefWithdraw {
		pattern = refWithdrawPattern
	}
	match := pattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	amount, ok := decimalString(match[1])
	if !ok {
		return nil
	}

	ev := &AccountEvent{
		Type:          eventType,
		Contract:      pc.log.Contract,
		ReceiptId:     pc.log.ReceiptId,
		Amount:        amount,
		TokenContract: match[2],
		Token:         pc.tokens.Lookup(match[2], ""),
	}
	if eventType == EventType_RefDeposit {
		ev.Sender = pc.sender()
		ev.Recipient = match[3]
	} else {
		ev.Sender = match[3]
	}
	return []nearTypes.ParsedAction{ev}
}

// parseWrap reads "Deposit <n> NEAR to <account>" and
// "Withdraw <n> NEAR from <account>" emitted by the wrap contract. A deposit is
// checked against the near_deposit call of the same receipt.
func (ep *EventParser) parseWrap(pc *parseContext, line string, eventType string) []nearTypes.ParsedAction {
	pattern := wrapDepositPattern
	if eventType == EventType_WrapWithdraw {
		pattern = wrapWithdrawPattern
	}
	match := pattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	amount, ok := decimalString(match[1])
	if !ok {
		return nil
	}

	ev := &AccountEvent{
		Type:          eventType,
		Contract:      pc.log.Contract,
		ReceiptId:     pc.log.ReceiptId,
		Amount:        amount,
		TokenContract: pc.log.Contract,
		Token:         pc.tokens.Lookup(pc.log.Contract, ""),
	}
	if eventType == EventType_WrapDeposit {
		ev.Recipient = match[2]
		ep.checkWrapDeposit(pc, amount)
	} else {
		ev.Sender = match[2]
	}
	return []nearTypes.ParsedAction{ev}
}

func (ep *EventParser) checkWrapDeposit(pc *parseContext, amount string) {
	action := pc.receiptAction()
	if action == nil || action.Args.String("method_name") != "near_deposit" {
		return
	}
	attached := action.Args.Amount("deposit").OrZero()
	logged := nearTypes.AmountFromString(amount).OrZero()
	if !attached.Equal(logged) {
		ep.logger.Sugar().Debugw("Wrap deposit log disagrees with attached deposit",
			zap.String("receiptId", pc.log.ReceiptId),
			zap.String("logged", logged.String()),
			zap.String("attached", attached.String()),
		)
	}
}

// parseLegacyTransfer reads "Transfer <n> [<token>] from <a> to <b>" emitted
// by token contracts that predate NEP-297 events.
func (ep *EventParser) parseLegacyTransfer(pc *parseContext, line string) []nearTypes.ParsedAction {
	match := legacyTransferPattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	amount, ok := decimalString(match[1])
	if !ok {
		return nil
	}
	return []nearTypes.ParsedAction{&TokenEvent{
		Type:          EventType_Transfer,
		Contract:      pc.log.Contract,
		ReceiptId:     pc.log.ReceiptId,
		Sender:        match[3],
		Recipient:     match[4],
		Amount:        amount,
		TokenContract: tokenOrContract(match[2], pc.log.Contract),
		Token:         pc.tokens.Lookup(pc.log.Contract, ""),
	}}
}

// parseLegacyBurn reads "Burn <n> [<token>] from <a>" and "Burned ...".
func (ep *EventParser) parseLegacyBurn(pc *parseContext, line string) []nearTypes.ParsedAction {
	match := legacyBurnPattern.FindStringSubmatch(line)
	if match == nil {
		return nil
	}
	amount, ok := decimalString(match[1])
	if !ok {
		return nil
	}
	return []nearTypes.ParsedAction{&TokenEvent{
		Type:          EventType_Burn,
		Contract:      pc.log.Contract,
		ReceiptId:     pc.log.ReceiptId,
		Sender:        match[3],
		Amount:        amount,
		TokenContract: tokenOrContract(match[2], pc.log.Contract),
		Token:         pc.tokens.Lookup(pc.log.Contract, ""),
	}}
}

func tokenOrContract(token, contract string) string {
	if token != "" {
		return token
	}
	return contract
}
