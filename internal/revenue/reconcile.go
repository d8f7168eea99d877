package revenue

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/virginus01/afobata-core/internal/ledger"
	"github.com/virginus01/afobata-core/internal/obs"
)

// TaskReconcileLedger is the asynq task type for the pending-entry sweep.
const TaskReconcileLedger = "ledger:reconcile"

const reconcileBatch = 100

// Reconciler completes wallet ledger entries whose inline confirmation
// failed after the withdrawal transaction committed.
type Reconciler struct {
	Ledger     ledger.Processor
	PendingAge time.Duration
	Log        zerolog.Logger
}

// NewReconcileTask builds the periodic sweep task.
func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskReconcileLedger, nil)
}

// HandleReconcile processes one sweep batch. Confirm is idempotent, so a
// sweep racing an inline confirmation is harmless.
func (rc *Reconciler) HandleReconcile(ctx context.Context, _ *asynq.Task) error {
	entries, err := rc.Ledger.ListStalePending(ctx, rc.PendingAge, reconcileBatch)
	if err != nil {
		return err
	}
	for _, e := range entries {
		res, err := rc.Ledger.Confirm(ctx, e.ReferenceID)
		if err != nil {
			rc.Log.Error().Err(err).Str("reference_id", e.ReferenceID).Msg("reconcile confirm failed")
			continue
		}
		if res.AlreadyCompleted {
			continue
		}
		if obs.LedgerReconciledTotal != nil {
			obs.LedgerReconciledTotal.Inc()
		}
		rc.Log.Info().
			Str("reference_id", e.ReferenceID).
			Str("user_id", e.UserID).
			Float64("amount", e.Amount).
			Msg("pending ledger entry completed by sweep")
	}
	return nil
}
