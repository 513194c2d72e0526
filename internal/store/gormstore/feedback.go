package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/natowatch/natowatch/internal/domain"
)

// FeedbackRepo is the feedback table repository.
type FeedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

func (r *FeedbackRepo) Create(ctx context.Context, fb *domain.Feedback) error {
	if fb.Status == "" {
		fb.Status = domain.FeedbackStatusOpen
	}
	if fb.SubmittedAt.IsZero() {
		fb.SubmittedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(fb).Error
}

// List returns feedback entries, newest first, optionally filtered by type
// and status.
func (r *FeedbackRepo) List(ctx context.Context, feedbackType, status string) ([]*domain.Feedback, error) {
	q := r.db.WithContext(ctx).Model(&domain.Feedback{})
	if feedbackType != "" {
		q = q.Where("type = ?", feedbackType)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var items []*domain.Feedback
	if err := q.Order("submitted_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
