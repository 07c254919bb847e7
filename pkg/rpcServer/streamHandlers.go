package rpcServer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/nearblocks/txns-action/pkg/actionFilter"
	"github.com/nearblocks/txns-action/pkg/eventBus/eventBusTypes"
	"github.com/nearblocks/txns-action/pkg/nearTypes"
	"github.com/thedevsaddam/govalidator"
	"go.uber.org/zap"
)

func init() {
	govalidator.AddCustomRule("near.actionFilter", actionFilterRule)
}

func actionFilterRule(field string, rule string, message string, value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return fmt.Errorf("The %s field must be a filter", field)
	}
	if raw == "" {
		return nil
	}
	if _, err := actionFilter.ParseFilterJSON([]byte(raw)); err != nil {
		return fmt.Errorf("The %s field must be a valid filter: %s", field, err.Error())
	}
	return nil
}

// extractStreamFilter reads the optional filter query parameter. A nil filter
// streams every action.
func extractStreamFilter(r *http.Request) (actionFilter.Filter, url.Values) {
	v := govalidator.New(govalidator.Options{
		Request: r,
		Rules: govalidator.MapData{
			"filter": []string{"near.actionFilter"},
		},
	})
	if errs := v.Validate(); len(errs) > 0 {
		return nil, errs
	}
	raw := r.URL.Query().Get("filter")
	if raw == "" {
		return nil, nil
	}
	filter, err := actionFilter.ParseFilterJSON([]byte(raw))
	if err != nil {
		return nil, url.Values{"filter": []string{err.Error()}}
	}
	return filter, nil
}

type streamedTransaction struct {
	TxnHash     string                   `json:"txnHash"`
	Source      string                   `json:"source"`
	BlockHeight uint64                   `json:"blockHeight"`
	Actions     []nearTypes.ParsedAction `json:"Actions"`
}

// subscribeToTransactions feeds every parsed transaction to handle until ctx
// is done or the server shuts down. Each subscription gets its own consumer
// id; requestId is only logged.
func (rpc *RpcServer) subscribeToTransactions(
	ctx context.Context,
	requestId string,
	handle func(*eventBusTypes.TransactionParsedData) error,
) error {
	consumer := &eventBusTypes.Consumer{
		Id:      eventBusTypes.ConsumerId(uuid.New().String()),
		Context: ctx,
		Channel: make(chan *eventBusTypes.Event, 16),
	}
	rpc.eventBus.Subscribe(consumer)
	defer rpc.eventBus.Unsubscribe(consumer)
	rpc.Logger.Sugar().Debugw("Stream subscribed",
		zap.String("requestId", requestId),
		zap.String("consumerId", string(consumer.Id)),
	)

	for {
		select {
		case <-ctx.Done():
			rpc.Logger.Sugar().Infow("Context done, exiting subscription", zap.String("requestId", requestId))
			return nil
		case <-rpc.closing:
			return nil
		case event := <-consumer.Channel:
			if event.Name != eventBusTypes.Event_TransactionParsed {
				continue
			}
			data, ok := event.Data.(*eventBusTypes.TransactionParsedData)
			if !ok {
				continue
			}
			if err := handle(data); err != nil {
				return err
			}
		}
	}
}

// handleStream writes every transaction parsed by this instance as a
// server-sent event. With a filter, only matching actions are sent and
// transactions without any are skipped.
func (rpc *RpcServer) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeServerError(w)
		return
	}
	requestId := RequestIdFromContext(r.Context())

	filter, errs := extractStreamFilter(r)
	if errs != nil {
		rpc.Logger.Sugar().Debugw("Invalid stream filter", zap.String("requestId", requestId), zap.Any("errors", errs))
		writeValidationError(w, errs)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	err := rpc.subscribeToTransactions(r.Context(), requestId, func(data *eventBusTypes.TransactionParsedData) error {
		actions, err := actionFilter.FilterActions(filter, data.Actions)
		if err != nil {
			rpc.Logger.Sugar().Debugw("Failed to filter actions",
				zap.String("requestId", requestId),
				zap.String("txnHash", data.TxnHash),
				zap.Error(err),
			)
			return nil
		}
		if filter != nil && len(actions) == 0 {
			return nil
		}
		payload, err := json.Marshal(&streamedTransaction{
			TxnHash:     data.TxnHash,
			Source:      data.Source,
			BlockHeight: data.BlockHeight,
			Actions:     actions,
		})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventBusTypes.Event_TransactionParsed, payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		rpc.Logger.Sugar().Debugw("Stream closed", zap.String("requestId", requestId), zap.Error(err))
	}
}
