package revenue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/virginus01/afobata-core/internal/ledger"
	"github.com/virginus01/afobata-core/internal/revenue"
)

type sweepLedger struct {
	stale     []ledger.Entry
	confirmed []string
	failRefs  map[string]error
}

func (s *sweepLedger) Confirm(_ context.Context, ref string) (ledger.Result, error) {
	if err := s.failRefs[ref]; err != nil {
		return ledger.Result{}, err
	}
	s.confirmed = append(s.confirmed, ref)
	return ledger.Result{ReferenceID: ref, Status: ledger.StatusCompleted}, nil
}

func (s *sweepLedger) ListStalePending(context.Context, time.Duration, int) ([]ledger.Entry, error) {
	return s.stale, nil
}

func TestReconcileCompletesStaleEntries(t *testing.T) {
	lg := &sweepLedger{
		stale: []ledger.Entry{
			{ReferenceID: "ref_1", UserID: "user_1", Amount: 6000},
			{ReferenceID: "ref_2", UserID: "user_2", Amount: 150},
		},
	}
	rc := &revenue.Reconciler{Ledger: lg, PendingAge: time.Hour, Log: zerolog.Nop()}

	err := rc.HandleReconcile(context.Background(), revenue.NewReconcileTask())
	require.NoError(t, err)
	require.Equal(t, []string{"ref_1", "ref_2"}, lg.confirmed)
}

func TestReconcileSkipsFailuresAndContinues(t *testing.T) {
	lg := &sweepLedger{
		stale: []ledger.Entry{
			{ReferenceID: "ref_1"},
			{ReferenceID: "ref_2"},
		},
		failRefs: map[string]error{"ref_1": errors.New("still locked")},
	}
	rc := &revenue.Reconciler{Ledger: lg, PendingAge: time.Hour, Log: zerolog.Nop()}

	err := rc.HandleReconcile(context.Background(), revenue.NewReconcileTask())
	require.NoError(t, err)
	require.Equal(t, []string{"ref_2"}, lg.confirmed)
}
