package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/natowatch/natowatch/internal/domain"
)

// RoadmapRepo is the roadmap_items table repository.
type RoadmapRepo struct {
	db *gorm.DB
}

func NewRoadmapRepo(db *gorm.DB) *RoadmapRepo {
	return &RoadmapRepo{db: db}
}

// List returns roadmap items ordered by priority (lower first, unset last),
// then newest first. Cancelled items are excluded unless requested by status.
func (r *RoadmapRepo) List(ctx context.Context, category, status string) ([]*domain.RoadmapItem, error) {
	q := r.db.WithContext(ctx).Model(&domain.RoadmapItem{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	} else {
		q = q.Where("status <> ?", domain.RoadmapStatusCancelled)
	}

	var items []*domain.RoadmapItem
	err := q.Order("priority IS NULL").
		Order("priority ASC").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
