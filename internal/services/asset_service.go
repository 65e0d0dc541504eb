// internal/services/asset_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/assetverse/assetverse-backend/internal/apperrors"
	"github.com/assetverse/assetverse-backend/internal/cache"
	"github.com/assetverse/assetverse-backend/internal/database"
	"github.com/assetverse/assetverse-backend/internal/models"
	"github.com/assetverse/assetverse-backend/internal/utils"
)

// AssetService owns the inventory ledger. Every quantity mutation runs as a
// conditional UPDATE judged by RowsAffected, so 0 <= available <= total holds
// under concurrent approvals, returns, and edits.
type AssetService struct {
	db    *gorm.DB
	cache *cache.AssetCache
}

type CreateAssetRequest struct {
	Name     string               `json:"name" validate:"required,max=255"`
	Image    string               `json:"image" validate:"omitempty,max=512"`
	Type     models.AssetCategory `json:"type" validate:"required,oneof=Returnable Non-returnable"`
	Quantity int                  `json:"quantity" validate:"min=0"`
}

type UpdateAssetRequest struct {
	Name     string               `json:"name" validate:"required,max=255"`
	Image    string               `json:"image" validate:"omitempty,max=512"`
	Type     models.AssetCategory `json:"type" validate:"required,oneof=Returnable Non-returnable"`
	Quantity int                  `json:"quantity" validate:"min=0"`
}

func NewAssetService(db *gorm.DB, assetCache *cache.AssetCache) *AssetService {
	return &AssetService{
		db:    db,
		cache: assetCache,
	}
}

func (s *AssetService) CreateAsset(hrID uuid.UUID, req *CreateAssetRequest) (*models.Asset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	var hr models.User
	if err := s.db.Where("id = ? AND role = ?", hrID, models.UserRoleHR).First(&hr).Error; err != nil {
		return nil, apperrors.ErrForbidden
	}

	asset := &models.Asset{
		HRID:              hrID,
		Name:              req.Name,
		Image:             req.Image,
		Type:              req.Type,
		TotalQuantity:     req.Quantity,
		AvailableQuantity: req.Quantity,
		CompanyName:       hr.CompanyName,
	}

	if err := s.db.Create(asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	s.cache.Invalidate(context.Background())
	return asset, nil
}

// UpdateAsset edits metadata and re-bases the total quantity. The available
// counter moves by the same delta as the total so outstanding assignments
// stay accounted for; an edit that would push available below zero fails.
func (s *AssetService) UpdateAsset(assetID, hrID uuid.UUID, req *UpdateAssetRequest) (*models.Asset, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	var asset models.Asset
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND hr_id = ?", assetID, hrID).First(&asset).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to load asset: %w", err)
		}

		delta := req.Quantity - asset.TotalQuantity

		result := tx.Model(&models.Asset{}).
			Where("id = ? AND hr_id = ? AND available_quantity + ? >= 0", assetID, hrID, delta).
			Updates(map[string]interface{}{
				"name":               req.Name,
				"image":              req.Image,
				"type":               req.Type,
				"total_quantity":     req.Quantity,
				"available_quantity": gorm.Expr("available_quantity + ?", delta),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update asset: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: quantity edit exceeds outstanding assignments", apperrors.ErrInvalidState)
		}

		return tx.Where("id = ?", assetID).First(&asset).Error
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(context.Background())
	return &asset, nil
}

// DeleteAsset refuses while pending requests or open assignments reference the
// asset, then soft-deletes it.
func (s *AssetService) DeleteAsset(assetID, hrID uuid.UUID) error {
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var asset models.Asset
		if err := tx.Where("id = ? AND hr_id = ?", assetID, hrID).First(&asset).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to load asset: %w", err)
		}

		var openRequests int64
		if err := tx.Model(&models.Request{}).
			Where("asset_id = ? AND status = ?", assetID, models.RequestStatusPending).
			Count(&openRequests).Error; err != nil {
			return fmt.Errorf("failed to count pending requests: %w", err)
		}
		if openRequests > 0 {
			return fmt.Errorf("%w: asset has pending requests", apperrors.ErrInvalidState)
		}

		var openAssignments int64
		if err := tx.Model(&models.Assignment{}).
			Where("asset_id = ? AND status = ?", assetID, models.AssignmentStatusAssigned).
			Count(&openAssignments).Error; err != nil {
			return fmt.Errorf("failed to count open assignments: %w", err)
		}
		if openAssignments > 0 {
			return fmt.Errorf("%w: asset has unreturned assignments", apperrors.ErrInvalidState)
		}

		return tx.Delete(&asset).Error
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(context.Background())
	return nil
}

func (s *AssetService) GetAsset(assetID uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.Where("id = ?", assetID).First(&asset).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	return &asset, nil
}

// ListAssets returns the HR account's own inventory with search, type filter,
// sorting and pagination.
func (s *AssetService) ListAssets(hrID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Asset{}).Where("hr_id = ?", hrID)

	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+params.Search+"%")
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	var assets []models.Asset
	query = utils.ApplySort(query, params, []string{"created_at", "name", "total_quantity", "available_quantity"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	result := utils.CreatePaginationResult(assets, total, params)
	return &result, nil
}

// ListAvailable returns every asset with stock on hand, served from the cache
// when it is warm. Employees browse this list before filing a request.
func (s *AssetService) ListAvailable(ctx context.Context, params utils.PaginationParams) ([]models.Asset, error) {
	unfiltered := params.Search == "" && params.Type == ""

	var assets []models.Asset
	if unfiltered && s.cache.GetAvailable(ctx, &assets) {
		return assets, nil
	}

	query := s.db.Model(&models.Asset{}).Where("available_quantity > 0")
	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+params.Search+"%")
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}

	if err := query.Order("created_at DESC").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list available assets: %w", err)
	}

	if unfiltered {
		s.cache.SetAvailable(ctx, assets)
	}
	return assets, nil
}

// AdjustAvailable moves the available counter by delta inside the caller's
// transaction. A failed debit means not enough stock; a failed credit means
// the ledger would exceed the total, which callers treat as a hard bug.
func (s *AssetService) AdjustAvailable(tx *gorm.DB, assetID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}

	query := tx.Model(&models.Asset{})
	if delta < 0 {
		query = query.Where("id = ? AND available_quantity >= ?", assetID, -delta)
	} else {
		query = query.Where("id = ? AND available_quantity + ? <= total_quantity", assetID, delta)
	}

	result := query.UpdateColumn("available_quantity", gorm.Expr("available_quantity + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to adjust stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if delta < 0 {
			return apperrors.ErrInsufficientStock
		}
		return fmt.Errorf("stock credit of %d on asset %s would exceed total quantity", delta, assetID)
	}
	return nil
}

// InvalidateCache drops the cached public listing. Exposed for services that
// mutate stock through AdjustAvailable inside their own transactions.
func (s *AssetService) InvalidateCache(ctx context.Context) {
	s.cache.Invalidate(ctx)
}
