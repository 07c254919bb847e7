package pipeline

import (
	"github.com/nearblocks/txns-action/pkg/eventBus/eventBusTypes"
)

// HandleTransactionParsedHook publishes a TransactionParsed event once a
// transaction's action list is complete.
//
// Parameters:
//   - txnHash: hash of the parsed transaction
//   - blockHeight: height of the block that included it
//   - result: the pipeline result
func (p *Pipeline) HandleTransactionParsedHook(txnHash string, blockHeight uint64, result *ParseResult) {
	if p.eventBus == nil {
		return
	}
	p.eventBus.Publish(&eventBusTypes.Event{
		Name: eventBusTypes.Event_TransactionParsed,
		Data: &eventBusTypes.TransactionParsedData{
			TxnHash:     txnHash,
			Source:      string(result.Source),
			BlockHeight: blockHeight,
			Actions:     result.Actions,
		},
	})
}
