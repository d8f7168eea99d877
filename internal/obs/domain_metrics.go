package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesTotal counts pricing quote outcomes.
	QuotesTotal *prometheus.CounterVec
	// SplitsTotal counts commission split outcomes.
	SplitsTotal *prometheus.CounterVec
	// WithdrawalsTotal counts revenue withdrawal outcomes.
	WithdrawalsTotal *prometheus.CounterVec
	// WithdrawalAmount records withdrawn amounts in the user's currency.
	WithdrawalAmount prometheus.Histogram
	// RateLookupsTotal counts exchange-rate table fetches by source.
	RateLookupsTotal *prometheus.CounterVec
	// LedgerReconciledTotal counts pending ledger entries completed by the sweep.
	LedgerReconciledTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quotes_total",
			Help:      "Count of pricing quote outcomes.",
		}, []string{"result"})
		SplitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_splits_total",
			Help:      "Count of commission split outcomes.",
		}, []string{"result"})
		WithdrawalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_withdrawals_total",
			Help:      "Count of revenue withdrawal outcomes.",
		}, []string{"result"})
		WithdrawalAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "revenue_withdrawal_amount",
			Help:      "Withdrawn amounts in the receiving currency.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		})
		RateLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_lookups_total",
			Help:      "Count of exchange-rate table fetches by source.",
		}, []string{"source", "result"})
		LedgerReconciledTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_reconciled_total",
			Help:      "Pending ledger entries completed by the reconciliation sweep.",
		})

		mustRegisterCollector(reg, QuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotesTotal = v
			}
		})
		mustRegisterCollector(reg, SplitsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SplitsTotal = v
			}
		})
		mustRegisterCollector(reg, WithdrawalsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				WithdrawalsTotal = v
			}
		})
		mustRegisterCollector(reg, WithdrawalAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				WithdrawalAmount = v
			}
		})
		mustRegisterCollector(reg, RateLookupsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RateLookupsTotal = v
			}
		})
		mustRegisterCollector(reg, LedgerReconciledTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				LedgerReconciledTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
