// Package receiptTree flattens the indexer's nested receipt tree into action
// records and rebuilds it into a canonical, typed shape.
package receiptTree

import (
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/nearblocks/txns-action/pkg/utils"
	"go.uber.org/zap"
)

// SystemAccount is the predecessor of refund and gas-return receipts.
const SystemAccount = "system"

const DefaultMaxDepth = 512

type ReceiptTreeFlattener struct {
	maxDepth int
	logger   *zap.Logger
}

func NewReceiptTreeFlattener(maxDepth int, l *zap.Logger) *ReceiptTreeFlattener {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &ReceiptTreeFlattener{
		maxDepth: maxDepth,
		logger:   l,
	}
}

// ProcessApiActions walks the tree pre-order and collects every action of
// every receipt. The root receipt's own actions are only included when
// allAction is true. Receipts sent by the system account are skipped along
// with everything below them.
func (f *ReceiptTreeFlattener) ProcessApiActions(resp *nearTypes.ReceiptApiResponse, allAction bool) []nearTypes.ReceiptAction {
	actions := make([]nearTypes.ReceiptAction, 0)

	root := resp.Root()
	if root == nil {
		return actions
	}

	type frame struct {
		receipt *nearTypes.ReceiptTree
		depth   int
	}

	truncated := false
	stack := []frame{{receipt: root, depth: 0}}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		receipt := current.receipt
		if receipt == nil || receipt.PredecessorAccountId == SystemAccount {
			continue
		}

		if current.receipt != root || allAction {
			for _, action := range receipt.Actions {
				actions = append(actions, nearTypes.ReceiptAction{
					From:       receipt.PredecessorAccountId,
					To:         receipt.ReceiverAccountId,
					ReceiptId:  receipt.ReceiptId,
					ActionKind: action.ActionKind,
					Args:       nearTypes.DecodeActionArgs(action.Args),
				})
			}
		}

		if current.depth >= f.maxDepth {
			if len(receipt.Receipts) > 0 {
				truncated = true
			}
			continue
		}
		// children are pushed in reverse so the first child is visited first
		for i := len(receipt.Receipts) - 1; i >= 0; i-- {
			stack = append(stack, frame{receipt: receipt.Receipts[i], depth: current.depth + 1})
		}
	}

	if truncated {
		f.logger.Sugar().Warnw("Receipt tree exceeds max depth, deeper receipts ignored",
			zap.String("receiptId", root.ReceiptId),
			zap.Int("maxDepth", f.maxDepth),
		)
	}
	return actions
}

// TransformReceiptData rebuilds the first receipt tree of resp. It returns nil
// when the response carries no receipts.
func (f *ReceiptTreeFlattener) TransformReceiptData(resp *nearTypes.ReceiptApiResponse) *nearTypes.TransformedReceipt {
	root := resp.Root()
	if root == nil {
		return nil
	}
	return f.transformReceipt(root, 0)
}

func (f *ReceiptTreeFlattener) transformReceipt(tree *nearTypes.ReceiptTree, depth int) *nearTypes.TransformedReceipt {
	if tree == nil {
		return nil
	}

	outgoing := make([]*nearTypes.TransformedReceipt, 0, len(tree.Receipts))
	if depth < f.maxDepth {
		for _, child := range tree.Receipts {
			if transformed := f.transformReceipt(child, depth+1); transformed != nil {
				outgoing = append(outgoing, transformed)
			}
		}
	} else if len(tree.Receipts) > 0 {
		f.logger.Sugar().Warnw("Receipt tree exceeds max depth, outgoing receipts dropped",
			zap.String("receiptId", tree.ReceiptId),
			zap.Int("maxDepth", f.maxDepth),
		)
	}

	var actions []nearTypes.TransformedAction
	if tree.Actions != nil {
		actions = utils.Map(tree.Actions, func(a nearTypes.ReceiptTreeAction, i uint64) nearTypes.TransformedAction {
			args := nearTypes.DecodeActionArgs(a.Args)
			cleaned, _ := utils.CleanNested(map[string]interface{}(args)).(map[string]interface{})
			out := nearTypes.ActionArgs(cleaned)
			if !out.Amount("deposit").IsPositive() {
				out["deposit"] = "0"
			}
			return nearTypes.TransformedAction{
				ActionKind: a.ActionKind,
				Args:       out,
				RlpHash:    a.RlpHash,
			}
		})
	}

	logs := tree.Outcome.Logs
	if logs == nil {
		logs = []string{}
	}

	receipt := &nearTypes.TransformedReceipt{
		ReceiptId:     tree.ReceiptId,
		PredecessorId: tree.PredecessorAccountId,
		ReceiverId:    tree.ReceiverAccountId,
		Actions:       actions,
		PublicKey:     tree.PublicKey,
		Outcome: nearTypes.TransformedOutcome{
			Logs:              logs,
			Status:            ConvertStatus(tree.Outcome.StatusKey, tree.Outcome.Result.String()),
			GasBurnt:          tree.Outcome.GasBurnt,
			TokensBurnt:       tree.Outcome.TokensBurnt,
			ExecutorAccountId: tree.Outcome.ExecutorAccountId,
			OutgoingReceipts:  outgoing,
		},
	}
	if tree.Block != nil {
		receipt.BlockHash = tree.Block.BlockHash
		if tree.Block.BlockHeight > 0 {
			height := tree.Block.BlockHeight
			receipt.BlockHeight = &height
		}
	}
	return receipt
}

// ConvertStatus maps an indexer status_key/result pair onto an execution
// status. Unknown and empty keys are reported as SuccessValue.
func ConvertStatus(statusKey string, result string) nearTypes.ReceiptStatus {
	switch statusKey {
	case nearTypes.StatusKey_SuccessReceiptId:
		return nearTypes.ReceiptStatus{SuccessReceiptId: &result}
	case nearTypes.StatusKey_Failure:
		return nearTypes.ReceiptStatus{Failure: &nearTypes.ReceiptFailure{ErrorMessage: result}}
	default:
		return nearTypes.ReceiptStatus{SuccessValue: &result}
	}
}
