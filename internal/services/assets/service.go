// Package assets is the asset catalog the ledger resolves symbols against.
package assets

import (
	"context"
	"errors"

	domainerrors "simex/internal/errors"
	"simex/internal/models"
	"simex/internal/repositories"
	"simex/internal/validation"
)

type Service struct {
	repo repositories.AssetRepository
}

func NewService(repo repositories.AssetRepository) *Service {
	if repo == nil {
		panic("asset repository is required")
	}
	return &Service{repo: repo}
}

// Resolve looks an asset up by symbol, case-insensitively.
func (s *Service) Resolve(ctx context.Context, symbol string) (*models.Asset, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	asset, err := s.repo.GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, translate(err, symbol)
	}
	return asset, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Asset, error) {
	if id == 0 {
		return nil, domainerrors.ErrInvalidInput.Withf("asset id is required")
	}
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}
	return asset, nil
}

func (s *Service) Create(ctx context.Context, symbol string, isCash bool) (*models.Asset, error) {
	symbol, err := validation.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	asset := &models.Asset{Symbol: symbol, IsCash: isCash}
	if err := s.repo.Create(ctx, asset); err != nil {
		if errors.Is(err, repositories.ErrDuplicateAsset) {
			return nil, domainerrors.ErrInvalidInput.Withf("asset %s already exists", symbol)
		}
		return nil, domainerrors.ErrStoreFailure.Wrap(err)
	}
	return asset, nil
}

func (s *Service) List(ctx context.Context) ([]models.Asset, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, domainerrors.ErrStoreFailure.Wrap(err)
	}
	return list, nil
}

func translate(err error, ref interface{}) error {
	if errors.Is(err, repositories.ErrAssetNotFound) {
		return domainerrors.ErrAssetNotFound.Withf("%v", ref)
	}
	return domainerrors.ErrStoreFailure.Wrap(err)
}
