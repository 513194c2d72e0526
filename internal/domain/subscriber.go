package domain

import "time"

// Subscriber is an email address signed up for opportunity alerts.
// Delivery itself happens outside this service; we only keep the list.
type Subscriber struct {
	ID uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	Email    string `gorm:"column:email;uniqueIndex;not null" json:"email"`
	IsActive bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`

	SubscribedAt   time.Time  `gorm:"column:subscribed_at;not null" json:"subscribed_at"`
	UnsubscribedAt *time.Time `gorm:"column:unsubscribed_at" json:"unsubscribed_at,omitempty"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}
