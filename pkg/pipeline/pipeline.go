package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/nearblocks/txns-action/internal/config"
	"github.com/nearblocks/txns-action/pkg/actionParser"
	"github.com/nearblocks/txns-action/pkg/clients/indexer"
	"github.com/nearblocks/txns-action/pkg/clients/nearRpc"
	"github.com/nearblocks/txns-action/pkg/eventBus/eventBusTypes"
	"github.com/nearblocks/txns-action/pkg/eventParser"
	"github.com/nearblocks/txns-action/pkg/mainActions"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/receiptTree"
	"github.com/nearblocks/txns-action/pkg/sourceSelector"
	"github.com/nearblocks/txns-action/pkg/tokenMetadata"
	"github.com/nearblocks/txns-action/pkg/transactionLogParser"
	"github.com/nearblocks/txns-action/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	ddTracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

type Source string

const (
	Source_Api Source = "api"
	Source_Rpc Source = "rpc"
)

// ReceiptsFetcher loads the receipt tree of a transaction.
type ReceiptsFetcher interface {
	GetReceipts(ctx context.Context, hash string) (*nearTypes.ReceiptApiResponse, error)
}

// ParseRequest is the input of one pipeline run. Receipts are fetched when
// not supplied.
type ParseRequest struct {
	TxnHash     string
	Transaction *nearTypes.ApiTransaction
	Receipts    *nearTypes.ReceiptApiResponse
}

// Summary holds the transaction totals, as decimal strings.
type Summary struct {
	Deposit        string `json:"deposit" yaml:"deposit"`
	GasAttached    string `json:"gasAttached" yaml:"gasAttached"`
	GasUsed        string `json:"gasUsed" yaml:"gasUsed"`
	TransactionFee string `json:"transactionFee" yaml:"transactionFee"`
	BlockHeight    uint64 `json:"blockHeight" yaml:"blockHeight"`
}

// ParseResult is the outcome of one pipeline run. Actions is the ordered
// action list: base actions first, then log derived events.
type ParseResult struct {
	Actions       []nearTypes.ParsedAction       `json:"Actions"`
	Source        Source                         `json:"source"`
	NonNep245     bool                           `json:"nonNep245"`
	Receipt       *nearTypes.TransformedReceipt  `json:"receipt"`
	Summary       *Summary                       `json:"summary"`
	TokenMetadata []nearTypes.ProcessedTokenMeta `json:"tokenMetadata"`
}

// Pipeline builds the action list of a transaction out of the indexer view,
// the receipt tree and, for old blocks, the RPC view.
type Pipeline struct {
	receipts     ReceiptsFetcher
	rpc          *nearRpc.Client
	selector     *sourceSelector.SourceSelector
	logParser    *transactionLogParser.TransactionLogParser
	flattener    *receiptTree.ReceiptTreeFlattener
	resolver     *tokenMetadata.TokenMetadataResolver
	eventParser  *eventParser.EventParser
	actionParser *actionParser.ActionParser
	metricsSink  *metrics.MetricsSink
	eventBus     eventBusTypes.IEventBus
	Logger       *zap.Logger
}

// NewPipeline creates a Pipeline with all of its collaborators.
//
// Parameters:
//   - rf: source of receipt trees, usually the indexer client
//   - rpc: RPC client used for blocks older than the network cutoff; nil disables the RPC path
//   - ss: source selector for the configured network
//   - tlp: log extractor
//   - rtf: receipt tree flattener
//   - tmr: token metadata resolver
//   - ep: event parser
//   - ap: base action parser
//   - ms: metrics sink
//   - eb: event bus notified after every run; may be nil
//   - l: logger
func NewPipeline(
	rf ReceiptsFetcher,
	rpc *nearRpc.Client,
	ss *sourceSelector.SourceSelector,
	tlp *transactionLogParser.TransactionLogParser,
	rtf *receiptTree.ReceiptTreeFlattener,
	tmr *tokenMetadata.TokenMetadataResolver,
	ep *eventParser.EventParser,
	ap *actionParser.ActionParser,
	ms *metrics.MetricsSink,
	eb eventBusTypes.IEventBus,
	l *zap.Logger,
) *Pipeline {
	return &Pipeline{
		receipts:     rf,
		rpc:          rpc,
		selector:     ss,
		logParser:    tlp,
		flattener:    rtf,
		resolver:     tmr,
		eventParser:  ep,
		actionParser: ap,
		metricsSink:  ms,
		eventBus:     eb,
		Logger:       l,
	}
}

// NewPipelineFromConfig wires every stage from the global config around the
// given upstream clients.
func NewPipelineFromConfig(
	cfg *config.Config,
	ic *indexer.Client,
	rpc *nearRpc.Client,
	ms *metrics.MetricsSink,
	eb eventBusTypes.IEventBus,
	l *zap.Logger,
) *Pipeline {
	return NewPipeline(
		ic,
		rpc,
		sourceSelector.NewSourceSelector(cfg.Network),
		transactionLogParser.NewTransactionLogParser(l),
		receiptTree.NewReceiptTreeFlattener(cfg.ReceiptsConfig.MaxDepth, l),
		tokenMetadata.NewTokenMetadataResolver(ic, cfg.MetadataConfig.Concurrency, ms, l),
		eventParser.NewEventParser(cfg.GetContractRegistry(), l),
		actionParser.NewActionParser(l),
		ms,
		eb,
		l,
	)
}

// ParseTransaction runs the whole pipeline for one transaction. Upstream
// failures degrade to empty inputs; an error is only returned for a request
// without a transaction or a cancelled context.
func (p *Pipeline) ParseTransaction(ctx context.Context, req *ParseRequest) (*ParseResult, error) {
	if req == nil || req.Transaction == nil {
		return nil, errors.New("transaction is required")
	}
	txn := req.Transaction
	txnHash := req.TxnHash
	if txnHash == "" {
		txnHash = txn.TransactionHash
	}

	span, ctx := ddTracer.StartSpanFromContext(ctx, "pipeline.ParseTransaction")
	span.SetTag("txn_hash", txnHash)
	span.SetTag("block_height", txn.Block.BlockHeight)
	defer span.Finish()

	startTime := time.Now()
	source := Source_Api
	hasError := false
	defer func() {
		_ = p.metricsSink.Timing(metricsTypes.Metric_Timing_PipelineDuration, time.Since(startTime), []metricsTypes.MetricsLabel{
			{Name: "source", Value: string(source)},
			{Name: "hasError", Value: strconv.FormatBool(hasError)},
		})
		span.SetTag("source", string(source))
		span.SetTag("has_error", hasError)
	}()

	receipts := req.Receipts
	if receipts == nil {
		receipts = p.fetchReceipts(ctx, txnHash)
	}

	apiLogs := p.logParser.ExtractApiLogs(txn)
	allActions := p.flattener.ProcessApiActions(receipts, true)

	result := &ParseResult{
		Receipt: p.flattener.TransformReceiptData(receipts),
		Summary: apiSummary(txn),
	}

	var mains []*nearTypes.ActionInfo
	if p.selector.ShouldUseRpc(txn.Block.BlockHeight) {
		source = Source_Rpc
		rpcTxn, block := p.fetchRpcTransaction(ctx, txnHash, txn.SignerAccountId)
		mains = mainActions.BuildRpcMainActions(rpcTxn)
		if rpcTxn != nil {
			result.Summary = rpcSummary(rpcTxn, block, txn.Block.BlockHeight)
		}
	} else {
		mains = mainActions.BuildApiMainActions(txn)
	}
	result.Source = source
	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_SourceSelected, []metricsTypes.MetricsLabel{
		{Name: "source", Value: string(source)},
	}, 1)

	logsDetails := LogsDetails(mains)
	nonNep245 := IsNonNep245(logsDetails)
	result.NonNep245 = nonNep245
	span.SetTag("non_nep245", nonNep245)

	var baseActions []nearTypes.ParsedAction
	var metas []nearTypes.ProcessedTokenMeta

	// base actions only depend on the selected main actions, so they are
	// built while metadata is fetched
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if nonNep245 && len(mains) > 0 {
			baseActions = p.parseBaseActions(txnHash, mains)
		}
		return nil
	})
	g.Go(func() error {
		metadataLogs := make([]nearTypes.TransactionLog, 0, len(apiLogs)+len(logsDetails))
		metadataLogs = append(metadataLogs, apiLogs...)
		metadataLogs = append(metadataLogs, logsDetails...)
		metas = p.resolver.ResolveTokenMetadata(gctx, metadataLogs)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		hasError = true
		return nil, errors.Wrap(err, "parse cancelled")
	}

	tokens := nearTypes.ToTokenMetadataMap(metas)
	eventActions := utils.Flatten(utils.Map(logsDetails, func(log nearTypes.TransactionLog, i uint64) []nearTypes.ParsedAction {
		return p.eventParser.ParseEventLogs(log, tokens, allActions)
	}))

	actions := utils.Flatten([][]nearTypes.ParsedAction{baseActions, eventActions})

	result.Actions = actions
	result.TokenMetadata = metas

	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_ActionsParsed, []metricsTypes.MetricsLabel{
		{Name: "origin", Value: "base"},
	}, float64(len(baseActions)))
	_ = p.metricsSink.Incr(metricsTypes.Metric_Incr_ActionsParsed, []metricsTypes.MetricsLabel{
		{Name: "origin", Value: "event"},
	}, float64(len(eventActions)))

	p.Logger.Sugar().Debugw("Parsed transaction",
		zap.String("txnHash", txnHash),
		zap.String("source", string(source)),
		zap.Bool("nonNep245", nonNep245),
		zap.Int("baseActions", len(baseActions)),
		zap.Int("eventActions", len(eventActions)),
		zap.Int("tokenMetadata", len(metas)),
	)

	p.HandleTransactionParsedHook(txnHash, txn.Block.BlockHeight, result)
	return result, nil
}

func (p *Pipeline) parseBaseActions(txnHash string, mains []*nearTypes.ActionInfo) []nearTypes.ParsedAction {
	parsed := utils.Flatten(utils.Map(mains, func(main *nearTypes.ActionInfo, i uint64) []nearTypes.ParsedAction {
		return p.actionParser.ParseAction(txnHash, main)
	}))
	return utils.Filter(parsed, func(action nearTypes.ParsedAction) bool {
		return action != nil
	})
}

func (p *Pipeline) fetchReceipts(ctx context.Context, txnHash string) *nearTypes.ReceiptApiResponse {
	if p.receipts == nil || txnHash == "" {
		return nil
	}
	span, ctx := ddTracer.StartSpanFromContext(ctx, "pipeline.FetchReceipts")
	defer span.Finish()

	receipts, err := p.receipts.GetReceipts(ctx, txnHash)
	if err != nil {
		p.Logger.Sugar().Warnw("Failed to fetch receipts, continuing without them",
			zap.String("txnHash", txnHash),
			zap.Error(err),
		)
		span.SetTag("error", true)
		return nil
	}
	return receipts
}

// fetchRpcTransaction loads the RPC view of a transaction and its block. A
// failed transaction lookup yields nil, which the caller treats as no RPC
// actions. The block is optional.
func (p *Pipeline) fetchRpcTransaction(ctx context.Context, txnHash string, signerId string) (*nearTypes.RpcTransaction, *nearTypes.RpcBlock) {
	if p.rpc == nil {
		return nil, nil
	}
	span, ctx := ddTracer.StartSpanFromContext(ctx, "pipeline.FetchRpcTransaction")
	defer span.Finish()

	session := p.rpc.NewSession()
	rpcTxn, err := session.TxStatus(ctx, txnHash, signerId)
	if err != nil {
		p.Logger.Sugar().Warnw("Failed to fetch transaction from rpc",
			zap.String("txnHash", txnHash),
			zap.Error(err),
		)
		span.SetTag("error", true)
		return nil, nil
	}

	blockHash := rpcTxn.TransactionOutcome.BlockHash
	if blockHash == "" {
		return rpcTxn, nil
	}
	block, err := session.Block(ctx, blockHash)
	if err != nil {
		p.Logger.Sugar().Debugw("Failed to fetch block from rpc",
			zap.String("txnHash", txnHash),
			zap.String("blockHash", blockHash),
			zap.Error(err),
		)
		return rpcTxn, nil
	}
	return rpcTxn, block
}

// LogsDetails returns the logs the event parsers run over: the logs of the
// selected main actions, or their actionsLog entries when there are none.
func LogsDetails(mains []*nearTypes.ActionInfo) []nearTypes.TransactionLog {
	details := make([]nearTypes.TransactionLog, 0)
	if len(mains) == 0 {
		return details
	}
	first := mains[0]
	if len(first.Logs) > 0 {
		return append(details, first.Logs...)
	}
	for i := range first.ActionsLog {
		entry := first.ActionsLog[i]
		details = append(details, nearTypes.TransactionLog{
			Contract:  first.To,
			Logs:      nearTypes.LogPayload{Action: &entry},
			ReceiptId: first.ReceiptId,
		})
	}
	return details
}

// IsNonNep245 is true when no entry decodes to a nep245 event.
func IsNonNep245(logs []nearTypes.TransactionLog) bool {
	for _, log := range logs {
		if transactionLogParser.IsStandard(log.Logs, "nep245") {
			return false
		}
	}
	return true
}

func apiSummary(txn *nearTypes.ApiTransaction) *Summary {
	return &Summary{
		Deposit:        txn.ActionsAgg.Deposit.String(),
		GasAttached:    txn.ActionsAgg.GasAttached.String(),
		GasUsed:        txn.OutcomesAgg.GasUsed.String(),
		TransactionFee: txn.OutcomesAgg.TransactionFee.String(),
		BlockHeight:    txn.Block.BlockHeight,
	}
}

func rpcSummary(txn *nearTypes.RpcTransaction, block *nearTypes.RpcBlock, blockHeight uint64) *Summary {
	outcome := txn.TransactionOutcome.Outcome
	if block != nil && block.Header.Height > 0 {
		blockHeight = block.Header.Height
	}
	return &Summary{
		Deposit:        mainActions.CalculateTotalDeposit(txn.Transaction.Actions).String(),
		GasAttached:    mainActions.CalculateTotalGas(txn.Transaction.Actions).String(),
		GasUsed:        mainActions.CalculateGasUsed(txn.ReceiptsOutcome, outcome.GasBurnt).String(),
		TransactionFee: mainActions.TransactionFee(txn.ReceiptsOutcome, outcome.TokensBurnt).String(),
		BlockHeight:    blockHeight,
	}
}
