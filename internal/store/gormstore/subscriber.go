package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/natowatch/natowatch/internal/domain"
)

// ErrAlreadySubscribed is returned on a subscribe attempt for an address
// that is already active.
var ErrAlreadySubscribed = errors.New("email already subscribed")

// ErrNotSubscribed is returned on an unsubscribe attempt for an unknown or
// already inactive address.
var ErrNotSubscribed = errors.New("email not subscribed")

// SubscriberRepo is the subscribers table repository.
type SubscriberRepo struct {
	db *gorm.DB
}

func NewSubscriberRepo(db *gorm.DB) *SubscriberRepo {
	return &SubscriberRepo{db: db}
}

// Subscribe adds an address, reactivating it if it unsubscribed earlier.
func (r *SubscriberRepo) Subscribe(ctx context.Context, email string, now time.Time) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = domain.Subscriber{Email: email, IsActive: true, SubscribedAt: now}
		if err := r.db.WithContext(ctx).Create(&sub).Error; err != nil {
			return nil, err
		}
		return &sub, nil
	case err != nil:
		return nil, err
	}

	if sub.IsActive {
		return nil, ErrAlreadySubscribed
	}
	sub.IsActive = true
	sub.SubscribedAt = now
	sub.UnsubscribedAt = nil
	if err := r.db.WithContext(ctx).Save(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Unsubscribe deactivates an address, keeping the row for auditability.
func (r *SubscriberRepo) Unsubscribe(ctx context.Context, email string, now time.Time) error {
	var sub domain.Subscriber
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotSubscribed
	}
	if err != nil {
		return err
	}
	if !sub.IsActive {
		return ErrNotSubscribed
	}

	sub.IsActive = false
	sub.UnsubscribedAt = &now
	return r.db.WithContext(ctx).Save(&sub).Error
}

// CountActive returns how many addresses are currently subscribed.
func (r *SubscriberRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Subscriber{}).
		Where("is_active = ?", true).
		Count(&n).Error
	return n, err
}
