package cmd

import (
	"context"
	"os"

	"github.com/nearblocks/txns-action/internal/config"
	"github.com/nearblocks/txns-action/pkg/actionExport"
	"github.com/nearblocks/txns-action/pkg/clients/indexer"
	"github.com/nearblocks/txns-action/pkg/clients/nearRpc"
	"github.com/nearblocks/txns-action/pkg/logger"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/pipeline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	parseFileFlag         = "file"
	parseReceiptsFileFlag = "receipts-file"
	parseFormatFlag       = "format"
	parseReceiptsFlag     = "receipts"
)

type parseOutput struct {
	TxnHash       string                         `json:"txnHash"`
	Source        pipeline.Source                `json:"source"`
	Summary       *pipeline.Summary              `json:"summary"`
	Actions       []nearTypes.ParsedAction       `json:"Actions"`
	TokenMetadata []nearTypes.ProcessedTokenMeta `json:"tokenMetadata"`
	Receipt       *nearTypes.TransformedReceipt  `json:"receipt,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a transaction file and print its actions",
	Long: `Parse an indexer transaction read from --file and print its actions with the transaction summary.

The file may hold the transaction itself or a txnsaction request body ({"txns": ...}).
Receipts and token metadata are fetched from the indexer unless --receipts-file is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.NewConfig()

		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
		if err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		defer l.Sync() //nolint:errcheck

		file, _ := cmd.Flags().GetString(parseFileFlag)
		if file == "" {
			return errors.Errorf("--%s is required", parseFileFlag)
		}
		receiptsFile, _ := cmd.Flags().GetString(parseReceiptsFileFlag)
		formatName, _ := cmd.Flags().GetString(parseFormatFlag)
		withReceipt, _ := cmd.Flags().GetBool(parseReceiptsFlag)

		format, err := actionExport.ParseFormat(formatName)
		if err != nil {
			return err
		}

		txn, err := readTransactionFile(file)
		if err != nil {
			return err
		}
		var receipts *nearTypes.ReceiptApiResponse
		if receiptsFile != "" {
			if receipts, err = readReceiptsFile(receiptsFile); err != nil {
				return err
			}
		}

		sink := metrics.NewNoopMetricsSink()
		indexerClient := indexer.NewClient(indexer.ConvertGlobalConfigToIndexerConfig(&cfg.ApiConfig), sink, l)
		rpcClient := nearRpc.NewClient(nearRpc.ConvertGlobalConfigToNearRpcConfig(&cfg.RpcConfig), sink, l)
		p := pipeline.NewPipelineFromConfig(cfg, indexerClient, rpcClient, sink, nil, l)

		result, err := p.ParseTransaction(context.Background(), &pipeline.ParseRequest{
			TxnHash:     txn.TransactionHash,
			Transaction: txn,
			Receipts:    receipts,
		})
		if err != nil {
			return err
		}
		l.Sugar().Debugw("Parsed transaction",
			zap.String("txnHash", txn.TransactionHash),
			zap.Int("actions", len(result.Actions)),
		)

		return actionExport.Write(cmd.OutOrStdout(), format, newParseOutput(txn.TransactionHash, result, withReceipt), result.Actions)
	},
}

func newParseOutput(txnHash string, result *pipeline.ParseResult, withReceipt bool) *parseOutput {
	out := &parseOutput{
		TxnHash:       txnHash,
		Source:        result.Source,
		Summary:       result.Summary,
		Actions:       result.Actions,
		TokenMetadata: result.TokenMetadata,
	}
	if out.Actions == nil {
		out.Actions = make([]nearTypes.ParsedAction, 0)
	}
	if withReceipt {
		out.Receipt = result.Receipt
	}
	return out
}

// unwrapTransaction accepts a bare transaction or a {"txns"|"transaction": ...}
// request body.
func unwrapTransaction(data []byte) []byte {
	if !gjson.ValidBytes(data) {
		return data
	}
	for _, key := range []string{"txns", "transaction"} {
		if inner := gjson.GetBytes(data, key); inner.IsObject() {
			return []byte(inner.Raw)
		}
	}
	return data
}

func readTransactionFile(path string) (*nearTypes.ApiTransaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	txn := &nearTypes.ApiTransaction{}
	if err := nearTypes.UnmarshalUseNumber(unwrapTransaction(data), txn); err != nil {
		return nil, errors.Wrapf(err, "failed to decode transaction in %s", path)
	}
	return txn, nil
}

func readReceiptsFile(path string) (*nearTypes.ReceiptApiResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	receipts := &nearTypes.ReceiptApiResponse{}
	if err := nearTypes.UnmarshalUseNumber(data, receipts); err != nil {
		return nil, errors.Wrapf(err, "failed to decode receipts in %s", path)
	}
	return receipts, nil
}
