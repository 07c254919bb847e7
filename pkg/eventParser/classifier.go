package eventParser

import (
	"regexp"

	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/transactionLogParser"
)

type LogKind string

const (
	LogKind_Nep141         LogKind = "nep141"
	LogKind_Nep245         LogKind = "nep245"
	LogKind_Nep171         LogKind = "nep171"
	LogKind_Dip4           LogKind = "dip4"
	LogKind_Burrow         LogKind = "burrow"
	LogKind_RefSwap        LogKind = "ref_swap"
	LogKind_RefDeposit     LogKind = "ref_deposit"
	LogKind_RefWithdraw    LogKind = "ref_withdraw"
	LogKind_WrapDeposit    LogKind = "wrap_deposit"
	LogKind_WrapWithdraw   LogKind = "wrap_withdraw"
	LogKind_LegacyTransfer LogKind = "legacy_transfer"
	LogKind_LegacyBurn     LogKind = "legacy_burn"
	LogKind_Unknown        LogKind = "unknown"
)

// Sentence grammars. These are heuristics over free text and match the first
// shape that fits.
var (
	wrapDepositPattern    = regexp.MustCompile(`^Deposit (\d+) NEAR to (\S+)`)
	wrapWithdrawPattern   = regexp.MustCompile(`^Withdraw (\d+) NEAR from (\S+)`)
	refSwapPattern        = regexp.MustCompile(`^Swapped (\d+) (\S+) for (\d+) (\S+)`)
	refDepositPattern     = regexp.MustCompile(`^Deposit (\d+) (\S+) to (\S+)`)
	refWithdrawPattern    = regexp.MustCompile(`^Withdraw (\d+) (\S+) from (\S+)`)
	legacyTransferPattern = regexp.MustCompile(`^Transfer (\d+)(?: (\S+))? from (\S+) to (\S+)`)
	legacyBurnPattern     = regexp.MustCompile(`^Burn(?:ed)? (\d+)(?: (\S+))? from (\S+)`)
)

var burrowEventSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(BurrowEvents))
	for _, e := range BurrowEvents {
		m[e] = struct{}{}
	}
	return m
}()

// Classify names the grammar a log entry follows. Decoded events dispatch on
// their standard, raw sentences on the emitting contract and the sentence
// shape.
func (ep *EventParser) Classify(log nearTypes.TransactionLog) LogKind {
	payload := transactionLogParser.Decode(log.Logs)

	if payload.Event != nil {
		return ep.classifyEvent(log.Contract, payload.Event)
	}
	if !payload.IsString() {
		return LogKind_Unknown
	}
	return ep.classifySentence(log.Contract, payload.Raw)
}

func (ep *EventParser) classifyEvent(contract string, event *nearTypes.EventLog) LogKind {
	switch event.Standard {
	case "nep141":
		return LogKind_Nep141
	case "nep245":
		return LogKind_Nep245
	case "nep171":
		return LogKind_Nep171
	case "dip4":
		if event.Event == EventType_TokenDiff {
			return LogKind_Dip4
		}
	case "burrow":
		if ep.registry != nil && contract != ep.registry.Burrow {
			break
		}
		if _, ok := burrowEventSet[event.Event]; ok {
			return LogKind_Burrow
		}
	}
	return LogKind_Unknown
}

func (ep *EventParser) classifySentence(contract string, line string) LogKind {
	if ep.registry != nil {
		if contract == ep.registry.Wrap {
			switch {
			case wrapDepositPattern.MatchString(line):
				return LogKind_WrapDeposit
			case wrapWithdrawPattern.MatchString(line):
				return LogKind_WrapWithdraw
			}
		}
		if ep.registry.IsRefContract(contract) {
			switch {
			case refSwapPattern.MatchString(line):
				return LogKind_RefSwap
			case refDepositPattern.MatchString(line):
				return LogKind_RefDeposit
			case refWithdrawPattern.MatchString(line):
				return LogKind_RefWithdraw
			}
		}
	}
	switch {
	case legacyTransferPattern.MatchString(line):
		return LogKind_LegacyTransfer
	case legacyBurnPattern.MatchString(line):
		return LogKind_LegacyBurn
	}
	return LogKind_Unknown
}
