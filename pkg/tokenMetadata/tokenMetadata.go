// Package tokenMetadata discovers the tokens referenced by a transaction's
// logs and fetches their metadata from the indexer.
package tokenMetadata

import (
	"context"

	"github.com/nearblocks/txns-action/pkg/clients/indexer"
	"github.com/nearblocks/txns-action/pkg/metrics"
	"github.com/nearblocks/txns-action/pkg/metrics/metricsTypes"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

// MetadataFetcher is the slice of the indexer client the resolver needs.
type MetadataFetcher interface {
	GetFtMeta(ctx context.Context, contract string) (*indexer.FtContract, error)
	GetMtMeta(ctx context.Context, contract string, tokenId string) (*indexer.MtContract, error)
	GetNftMeta(ctx context.Context, contract string) (*indexer.NftContract, error)
}

type TokenMetadataResolver struct {
	fetcher     MetadataFetcher
	concurrency int
	metrics     *metrics.MetricsSink
	logger      *zap.Logger
}

func NewTokenMetadataResolver(fetcher MetadataFetcher, concurrency int, ms *metrics.MetricsSink, l *zap.Logger) *TokenMetadataResolver {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &TokenMetadataResolver{
		fetcher:     fetcher,
		concurrency: concurrency,
		metrics:     ms,
		logger:      l,
	}
}

// ResolveTokenMetadata fetches the metadata of every token referenced by logs.
// Each distinct key is fetched once. A failed or empty fetch is logged and
// left out of the result; it never affects the other fetches.
func (r *TokenMetadataResolver) ResolveTokenMetadata(ctx context.Context, logs []nearTypes.TransactionLog) []nearTypes.ProcessedTokenMeta {
	requests := PlanFetches(logs)
	_ = r.metrics.Gauge(metricsTypes.Metric_Gauge_TokenMetadataKeys, float64(len(requests)), nil)

	results := make([]*nearTypes.ProcessedTokenMeta, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			meta, err := r.fetch(gctx, req)
			status := "ok"
			switch {
			case indexer.IsNotFound(err):
				status = "missing"
				r.logger.Sugar().Debugw("Token metadata not found",
					zap.String("kind", string(req.Kind)),
					zap.String("contract", req.Contract),
					zap.String("tokenId", req.TokenId),
				)
			case err != nil:
				status = "error"
				r.logger.Sugar().Warnw("Failed to fetch token metadata",
					zap.String("kind", string(req.Kind)),
					zap.String("contract", req.Contract),
					zap.String("tokenId", req.TokenId),
					zap.Error(err),
				)
			case meta == nil:
				status = "missing"
			default:
				results[i] = meta
			}
			_ = r.metrics.Incr(metricsTypes.Metric_Incr_TokenMetadataFetch, []metricsTypes.MetricsLabel{
				{Name: "kind", Value: string(req.Kind)},
				{Name: "status", Value: status},
			}, 1)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]nearTypes.ProcessedTokenMeta, 0, len(results))
	for _, meta := range results {
		if meta != nil {
			out = append(out, *meta)
		}
	}
	return out
}

func (r *TokenMetadataResolver) fetch(ctx context.Context, req FetchRequest) (*nearTypes.ProcessedTokenMeta, error) {
	switch req.Kind {
	case FetchKind_Ft:
		ft, err := r.fetcher.GetFtMeta(ctx, req.Contract)
		if err != nil || ft == nil {
			return nil, err
		}
		return &nearTypes.ProcessedTokenMeta{ContractId: req.Contract, Metadata: FromFtContract(ft)}, nil
	case FetchKind_Mt:
		mt, err := r.fetcher.GetMtMeta(ctx, req.Contract, req.TokenId)
		if err != nil || mt == nil {
			return nil, err
		}
		return &nearTypes.ProcessedTokenMeta{ContractId: req.Contract, TokenId: req.TokenId, Metadata: FromMtContract(mt)}, nil
	case FetchKind_Nft:
		nft, err := r.fetcher.GetNftMeta(ctx, req.Contract)
		if err != nil || nft == nil {
			return nil, err
		}
		return &nearTypes.ProcessedTokenMeta{ContractId: req.Contract, Metadata: FromNftContract(nft)}, nil
	default:
		return nil, nil
	}
}

func orDefault(s string, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func FromFtContract(ft *indexer.FtContract) nearTypes.TokenMetadata {
	return nearTypes.TokenMetadata{
		Name:        ft.Name,
		Symbol:      ft.Symbol,
		Decimals:    int(ft.Decimals.OrZero().IntPart()),
		Price:       orDefault(ft.Price.String(), "0"),
		MarketCap:   orDefault(ft.OnchainMarketCap.String(), "0"),
		Volume24h:   orDefault(ft.Volume24h.String(), "0"),
		Description: ft.Description,
		Website:     ft.Website,
		Icon:        ft.Icon,
	}
}

// FromMtContract prefers the token's media over the contract icon.
func FromMtContract(mt *indexer.MtContract) nearTypes.TokenMetadata {
	icon := ""
	switch {
	case mt.Token.Media != nil && *mt.Token.Media != "":
		icon = *mt.Token.Media
	case mt.Base.Icon != nil:
		icon = *mt.Base.Icon
	}
	return nearTypes.TokenMetadata{
		Name:        mt.Base.Name,
		Symbol:      mt.Base.Symbol,
		Decimals:    int(mt.Base.Decimals.OrZero().IntPart()),
		Price:       "0",
		MarketCap:   "0",
		Volume24h:   "0",
		Description: mt.Token.Description,
		Icon:        &icon,
	}
}

func FromNftContract(nft *indexer.NftContract) nearTypes.TokenMetadata {
	return nearTypes.TokenMetadata{
		Name:      nft.Name,
		Symbol:    nft.Symbol,
		Price:     "0",
		MarketCap: "0",
		Volume24h: "0",
		Icon:      nft.Icon,
	}
}
