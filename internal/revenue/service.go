// Package revenue converts accumulated ad-view mille balances into wallet
// cash. A withdrawal debits three shared counters and credits the user's
// wallet in one transaction, guarded by a per-user distributed lock.
package revenue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/virginus01/afobata-core/internal/common"
	"github.com/virginus01/afobata-core/internal/currency"
	"github.com/virginus01/afobata-core/internal/events"
	"github.com/virginus01/afobata-core/internal/ledger"
	"github.com/virginus01/afobata-core/internal/lock"
	"github.com/virginus01/afobata-core/internal/mille"
	"github.com/virginus01/afobata-core/internal/obs"
	"github.com/virginus01/afobata-core/internal/repo"
)

// Store interfaces keep the service testable without a database.
type (
	BrandStore interface {
		Get(ctx context.Context, id string) (repo.Brand, error)
	}
	UserStore interface {
		Get(ctx context.Context, id string) (repo.User, error)
	}
	WalletStore interface {
		Get(ctx context.Context, id string) (repo.Wallet, error)
		GetByOwner(ctx context.Context, userID string) (repo.Wallet, error)
	}
	Withdrawer interface {
		Execute(ctx context.Context, p repo.WithdrawalParams) error
	}
)

// Input is a withdrawal request.
type Input struct {
	UserID      string `json:"userId" validate:"required"`
	UserBrandID string `json:"userBrandId" validate:"required"`
}

// Receipt is returned to the caller on success.
type Receipt struct {
	ReferenceID string  `json:"referenceId"`
	Mille       int64   `json:"mille"`
	Views       float64 `json:"views"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
}

// Service runs the withdrawal state machine.
type Service struct {
	Brands      BrandStore
	Users       UserStore
	Wallets     WalletStore
	Withdrawals Withdrawer
	Ledger      ledger.Processor
	Rates       currency.Source
	Locker      lock.Locker
	LockTTL     time.Duration
	Log         zerolog.Logger
}

// Withdraw converts the user's whole-thousand view balance into a wallet
// credit. Fractional views below the last whole mille stay on the counter
// for the next cycle. Concurrent requests for the same user serialize on a
// Redis lock so the eligibility check and the decrement cannot interleave.
func (s *Service) Withdraw(ctx context.Context, in Input) (Receipt, error) {
	if in.UserID == "" || in.UserBrandID == "" {
		return Receipt{}, common.NewAppError(common.CodeBadRequest, "userId and userBrandId are required", http.StatusBadRequest, nil)
	}

	var receipt Receipt
	err := s.Locker.WithLock(ctx, "withdraw:"+in.UserID, s.LockTTL, func(ctx context.Context) error {
		r, err := s.withdraw(ctx, in)
		receipt = r
		return err
	})
	if err != nil {
		recordWithdrawal("failed")
		return Receipt{}, err
	}
	recordWithdrawal(receipt.Status)
	if obs.WithdrawalAmount != nil {
		obs.WithdrawalAmount.Observe(receipt.Amount)
	}
	return receipt, nil
}

func (s *Service) withdraw(ctx context.Context, in Input) (Receipt, error) {
	var (
		brand repo.Brand
		user  repo.User
		rates currency.Table
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		brand, err = s.Brands.Get(gctx, in.UserBrandID)
		return err
	})
	g.Go(func() (err error) {
		user, err = s.Users.Get(gctx, in.UserID)
		return err
	})
	g.Go(func() (err error) {
		rates, err = s.Rates.Rates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Receipt{}, common.NewAppError(common.CodeBadRequest, "failed to fetch required data", http.StatusBadRequest, err)
		}
		return Receipt{}, common.NewAppError(common.CodeDependencyFailure, "failed to fetch required data", http.StatusBadGateway, err)
	}

	if brand.CostPerMille <= 0 || brand.ChildrenMille <= 0 {
		return Receipt{}, common.NewAppError(common.CodeNotEligible, "insufficient revenue available", http.StatusUnprocessableEntity, nil)
	}
	units := mille.Whole(user.Mille)
	if units <= 0 {
		return Receipt{}, common.NewAppError(common.CodeNotEligible, "Minimum 1 mille required for conversion", http.StatusUnprocessableEntity, nil)
	}

	// Without both currencies the earnings cannot be expressed in the
	// user's wallet; abort here rather than debit pools for a zero credit.
	if brand.DefaultCurrency == "" || user.DefaultCurrency == "" {
		return Receipt{}, common.NewAppError(common.CodeBadRequest, "currency details missing for conversion", http.StatusUnprocessableEntity, nil)
	}

	views := mille.NearestThousandBelow(user.Mille)
	gross := brand.CostPerMille * float64(units)
	earnings, err := currency.Convert(gross, rates, brand.DefaultCurrency, user.DefaultCurrency)
	if err != nil {
		if errors.Is(err, currency.ErrRateUnavailable) {
			return Receipt{}, common.NewAppError(common.CodeRateUnavailable, "exchange rate unavailable for conversion", http.StatusUnprocessableEntity, err)
		}
		return Receipt{}, common.NewAppError(common.CodeInternal, "currency conversion failed", http.StatusInternalServerError, err)
	}

	ownerWallet, err := s.Wallets.GetByOwner(ctx, brand.UserID)
	if err != nil {
		return Receipt{}, common.NewAppError(common.CodeDependencyFailure, "failed to fetch required data", http.StatusBadGateway, err)
	}
	userWallet, err := s.userWallet(ctx, user)
	if err != nil {
		return Receipt{}, common.NewAppError(common.CodeDependencyFailure, "failed to fetch required data", http.StatusBadGateway, err)
	}

	referenceID := uuid.NewString()
	payload, _ := json.Marshal(map[string]any{
		"referenceId": referenceID,
		"userId":      user.ID,
		"brandId":     brand.ID,
		"mille":       units,
		"views":       views,
		"amount":      earnings,
		"currency":    user.DefaultCurrency,
	})
	err = s.Withdrawals.Execute(ctx, repo.WithdrawalParams{
		BrandID:       brand.ID,
		UserID:        user.ID,
		OwnerWalletID: ownerWallet.ID,
		UserWalletID:  userWallet.ID,
		Views:         views,
		GrossAmount:   gross,
		CreditAmount:  earnings,
		Currency:      user.DefaultCurrency,
		ReferenceID:   referenceID,
		EventTopic:    events.TopicRevenueWithdrawn,
		EventPayload:  payload,
	})
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientBalance) {
			return Receipt{}, common.NewAppError(common.CodeNotEligible, "insufficient revenue available", http.StatusUnprocessableEntity, err)
		}
		return Receipt{}, common.NewAppError(common.CodeDependencyFailure, "withdrawal could not be completed, try again", http.StatusBadGateway, err)
	}

	receipt := Receipt{
		ReferenceID: referenceID,
		Mille:       units,
		Views:       views,
		Amount:      earnings,
		Currency:    user.DefaultCurrency,
		Status:      ledger.StatusCompleted,
	}

	// The debits are committed; a failed confirmation leaves the entry
	// pending for the reconciliation sweep instead of failing the request.
	res, err := s.Ledger.Confirm(ctx, referenceID)
	if err != nil {
		s.Log.Warn().Err(err).Str("reference_id", referenceID).Msg("ledger confirm deferred to reconciliation")
		receipt.Status = ledger.StatusPending
		return receipt, nil
	}
	receipt.Status = res.Status
	return receipt, nil
}

// userWallet resolves the destination wallet, preferring the explicit link
// on the user row over the owner lookup.
func (s *Service) userWallet(ctx context.Context, user repo.User) (repo.Wallet, error) {
	if user.WalletID != "" {
		return s.Wallets.Get(ctx, user.WalletID)
	}
	return s.Wallets.GetByOwner(ctx, user.ID)
}

func recordWithdrawal(result string) {
	if obs.WithdrawalsTotal != nil {
		obs.WithdrawalsTotal.WithLabelValues(result).Inc()
	}
}
