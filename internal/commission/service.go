package commission

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/virginus01/afobata-core/internal/common"
	"github.com/virginus01/afobata-core/internal/currency"
	"github.com/virginus01/afobata-core/internal/events"
	"github.com/virginus01/afobata-core/internal/obs"
	"github.com/virginus01/afobata-core/internal/repo"
)

// Recorder persists a computed split.
type Recorder interface {
	RecordSplit(ctx context.Context, orderID, productID string, parties any) error
}

// BrandSource resolves brand hierarchy details for parties that arrive as
// bare ids.
type BrandSource interface {
	Get(ctx context.Context, id string) (repo.Brand, error)
	Parent(ctx context.Context, brand repo.Brand) (repo.Brand, bool, error)
}

// Service computes splits, persists them, and emits the settlement event.
type Service struct {
	Settlements Recorder
	Brands      BrandSource
	Rates       currency.Source
	Bus         *events.Bus
	Log         zerolog.Logger
}

// Settle runs a commission split for one order. When the input carries no
// rate table the current table is fetched from the rates source.
func (s *Service) Settle(ctx context.Context, in Input) (Result, error) {
	if err := s.hydrate(ctx, &in); err != nil {
		recordSplit("failed")
		if errors.Is(err, repo.ErrNotFound) {
			return Result{}, common.NewAppError(common.CodeBadRequest, "failed to fetch required data", http.StatusBadRequest, err)
		}
		return Result{}, common.NewAppError(common.CodeDependencyFailure, "failed to fetch required data", http.StatusBadGateway, err)
	}

	if len(in.Rates) == 0 && s.Rates != nil {
		rates, err := s.Rates.Rates(ctx)
		if err != nil {
			recordSplit("failed")
			return Result{}, common.NewAppError(common.CodeDependencyFailure, "failed to fetch exchange rates", http.StatusBadGateway, err)
		}
		in.Rates = rates
	}

	result, err := Split(in)
	if err != nil {
		recordSplit("aborted")
		var se *SplitError
		if errors.As(err, &se) && errors.Is(err, currency.ErrRateUnavailable) {
			return Result{}, common.NewAppError(common.CodeRateUnavailable, "exchange rate unavailable for settlement", http.StatusUnprocessableEntity, err)
		}
		return Result{}, common.NewAppError(common.CodeInternal, "commission split failed", http.StatusInternalServerError, err)
	}

	if err := s.Settlements.RecordSplit(ctx, in.OrderID, in.Product.ID, result); err != nil {
		recordSplit("failed")
		return Result{}, common.NewAppError(common.CodeDependencyFailure, "could not record settlement, try again", http.StatusBadGateway, err)
	}

	if s.Bus != nil {
		if err := s.Bus.Emit(ctx, events.TopicSettlementRecorded, in.OrderID, result); err != nil {
			s.Log.Error().Err(err).Str("order_id", in.OrderID).Msg("settlement event emit failed")
		}
	}
	recordSplit("ok")
	return result, nil
}

// hydrate fills commission terms for parties supplied as bare ids. Parties
// that already carry a settlement currency are taken as-is.
func (s *Service) hydrate(ctx context.Context, in *Input) error {
	if s.Brands == nil {
		return nil
	}
	if err := s.hydrateLeg(ctx, &in.OrderBrand, &in.OrderParentBrand); err != nil {
		return err
	}
	return s.hydrateLeg(ctx, &in.ProductBrand, &in.ProductParentBrand)
}

func (s *Service) hydrateLeg(ctx context.Context, party, parent *PartyDetails) error {
	if party.BrandID == "" || party.CurrencyCode != "" {
		return nil
	}
	brand, err := s.Brands.Get(ctx, party.BrandID)
	if err != nil {
		return err
	}
	party.CurrencyCode = brand.DefaultCurrency
	party.SalesCommission = brand.SalesCommission
	if parent.BrandID != "" || parent.CurrencyCode != "" {
		return nil
	}
	p, ok, err := s.Brands.Parent(ctx, brand)
	if err != nil {
		return err
	}
	if ok {
		parent.BrandID = p.ID
		parent.CurrencyCode = p.DefaultCurrency
		parent.SalesCommission = p.SalesCommission
	}
	return nil
}

func recordSplit(result string) {
	if obs.SplitsTotal != nil {
		obs.SplitsTotal.WithLabelValues(result).Inc()
	}
}
