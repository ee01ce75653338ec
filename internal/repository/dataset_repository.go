package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gopherai-insight/internal/model"
)

type DatasetRepository struct {
	db *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func (r *DatasetRepository) Create(ctx context.Context, dataset *model.Dataset) error {
	if err := r.db.WithContext(ctx).Create(dataset).Error; err != nil {
		return fmt.Errorf("create dataset failed: %w", err)
	}
	return nil
}

func (r *DatasetRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Dataset, error) {
	var datasets []model.Dataset
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&datasets).Error; err != nil {
		return nil, fmt.Errorf("list datasets failed: %w", err)
	}
	return datasets, nil
}

func (r *DatasetRepository) GetByIDAndUserID(ctx context.Context, id string, userID uint) (*model.Dataset, error) {
	var dataset model.Dataset
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&dataset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dataset failed: %w", err)
	}
	return &dataset, nil
}

// Save writes every column of dataset. The last writer wins.
func (r *DatasetRepository) Save(ctx context.Context, dataset *model.Dataset) error {
	if err := r.db.WithContext(ctx).Save(dataset).Error; err != nil {
		return fmt.Errorf("update dataset failed: %w", err)
	}
	return nil
}

func (r *DatasetRepository) DeleteByIDAndUserID(ctx context.Context, id string, userID uint) error {
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Dataset{}).Error; err != nil {
		return fmt.Errorf("delete dataset failed: %w", err)
	}
	return nil
}
