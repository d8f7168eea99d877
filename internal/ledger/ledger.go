// Package ledger tracks wallet credit entries through their pending to
// completed lifecycle. Entries are written by the withdrawal transaction and
// confirmed here, either inline after commit or by the reconciliation sweep.
package ledger

import (
	"context"
	"errors"
	"time"
)

const (
	TypeCredit = "credit"

	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"

	GatewayWallet = "wallet"
)

// ErrNotFound is returned when no entry matches the reference id.
var ErrNotFound = errors.New("ledger: entry not found")

// Entry is one wallet ledger row.
type Entry struct {
	ReferenceID string
	WalletID    string
	UserID      string
	Currency    string
	Amount      float64
	EntryType   string
	Status      string
	Gateway     string
	TrnxType    string
	CreatedAt   time.Time
}

// Result reports the outcome of a confirmation.
type Result struct {
	ReferenceID string
	Status      string
	// AlreadyCompleted is true when the entry had been confirmed before;
	// confirming twice is a no-op.
	AlreadyCompleted bool
}

// Processor finalizes pending entries.
type Processor interface {
	// Confirm moves a pending entry to completed. It is idempotent: a
	// second confirmation of the same reference succeeds and reports
	// AlreadyCompleted.
	Confirm(ctx context.Context, referenceID string) (Result, error)
	// ListStalePending returns pending entries older than the cutoff,
	// oldest first, for the reconciliation sweep.
	ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]Entry, error)
}
