// Package dispatcher places calls one at a time and records every attempt.
package dispatcher

import (
	"context"
	"time"

	"github.com/jmehdipour/dialer/internal/logger"
	"github.com/jmehdipour/dialer/internal/logstore"
	"github.com/jmehdipour/dialer/internal/metrics"
	"github.com/jmehdipour/dialer/internal/model"
	"github.com/jmehdipour/dialer/internal/telephony"
	"github.com/jmehdipour/dialer/internal/util"
	"go.uber.org/zap"
)

type Dispatcher struct {
	provider telephony.Provider
	store    logstore.Store
}

func New(provider telephony.Provider, store logstore.Store) *Dispatcher {
	return &Dispatcher{provider: provider, store: store}
}

// Dispatch places one call per number, sequentially and without retries.
// A provider failure on one number never stops the rest of the batch; it
// is recorded in that number's entry. Exactly one CallLogEntry is produced
// per number, all sharing a batch ID. A store append failure cannot be
// allowed to vanish: it is logged and counted, and the entry is still
// returned to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, numbers []string) []model.CallLogEntry {
	batchID := util.NewBatchID()
	results := make([]model.CallLogEntry, 0, len(numbers))

	for _, number := range numbers {
		e := model.CallLogEntry{
			Number:    number,
			Timestamp: time.Now().UTC(),
			BatchID:   batchID,
		}

		sid, err := d.provider.PlaceCall(ctx, number)
		if err != nil {
			e.Status = model.StatusFailed
			e.Error = telephony.WithGuidance(telephony.CleanError(err.Error()))
		} else {
			e.Status = model.StatusInitiated
			e.Success = true
			e.SID = sid
		}
		metrics.CallsTotal.WithLabelValues(e.Status.String()).Inc()

		if err := d.store.Append(ctx, e); err != nil {
			metrics.LogWriteFailures.Inc()
			logger.Log.Error("call log append failed",
				zap.String("number", e.Number),
				zap.String("batch_id", batchID),
				zap.Error(err),
			)
		}

		results = append(results, e)
	}

	return results
}
