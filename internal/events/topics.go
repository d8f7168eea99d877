package events

// Topic constants for domain events emitted by the settlement engine.
const (
	TopicSettlementRecorded      = "settlement.recorded"
	TopicRevenueWithdrawn        = "revenue.withdrawn"
	TopicRevenueWithdrawalFailed = "revenue.withdrawal_failed"
	TopicLedgerReconciled        = "ledger.reconciled"
)

// DefaultTopics returns the canonical list of topics the worker dispatches.
func DefaultTopics() []string {
	return []string{
		TopicSettlementRecorded,
		TopicRevenueWithdrawn,
		TopicRevenueWithdrawalFailed,
		TopicLedgerReconciled,
	}
}
