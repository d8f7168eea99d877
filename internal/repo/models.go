// Package repo provides the Postgres persistence layer for brands, users,
// wallets, settlements and the outbox.
package repo

import "time"

// Brand is a node in the brand hierarchy. ChildrenMille is the pooled raw
// view balance owed to the brand's resellers; CostPerMille is what the brand
// pays per thousand views, in the owner's default currency.
type Brand struct {
	ID                  string
	UserID              string
	ParentBrandID       string
	DefaultCurrency     string
	CostPerMille        float64
	CostPerUnit         float64
	ChildrenMille       float64
	SalesCommission     float64
	InhouseMonetization bool
}

// User holds the fields the settlement core reads: the raw ad-view counter
// and where earnings land.
type User struct {
	ID              string
	BrandID         string
	Mille           float64
	DefaultCurrency string
	WalletID        string
}

// Wallet is a spendable balance plus the brand-side ShareValue ledger of
// mille revenue owed to resellers.
type Wallet struct {
	ID          string
	OwnerUserID string
	Value       float64
	ShareValue  float64
	Currency    string
}

// OutboxEvent is a persisted domain event awaiting delivery.
type OutboxEvent struct {
	ID          int64
	Topic       string
	AggregateID string
	Payload     []byte
	OccurredAt  time.Time
}
