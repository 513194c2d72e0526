package domain

import "time"

// Feedback types.
const (
	FeedbackTypeBug         = "bug"
	FeedbackTypeImprovement = "improvement"
)

// Feedback statuses.
const (
	FeedbackStatusOpen       = "open"
	FeedbackStatusInProgress = "in_progress"
	FeedbackStatusResolved   = "resolved"
	FeedbackStatusRejected   = "rejected"
)

// Feedback priorities.
const (
	FeedbackPriorityLow      = "low"
	FeedbackPriorityMedium   = "medium"
	FeedbackPriorityHigh     = "high"
	FeedbackPriorityCritical = "critical"
)

// Feedback is a public bug report or improvement suggestion.
type Feedback struct {
	ID uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	Type        string `gorm:"column:type;not null;index" json:"type"`
	Title       string `gorm:"column:title;not null" json:"title"`
	Description string `gorm:"column:description;type:text;not null" json:"description"`
	Status      string `gorm:"column:status;not null;default:open;index" json:"status"`
	Priority    string `gorm:"column:priority" json:"priority,omitempty"`

	SubmittedBy string `gorm:"column:submitted_by" json:"submitted_by,omitempty"`

	SubmittedAt time.Time  `gorm:"column:submitted_at;not null;index" json:"submitted_at"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`

	ResolutionNotes string `gorm:"column:resolution_notes;type:text" json:"resolution_notes,omitempty"`
	// AdminNotes is internal only and never serialized in API responses.
	AdminNotes string `gorm:"column:admin_notes;type:text" json:"-"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// ValidFeedbackType reports whether t is an accepted feedback type.
func ValidFeedbackType(t string) bool {
	return t == FeedbackTypeBug || t == FeedbackTypeImprovement
}

// ValidFeedbackStatus reports whether s is an accepted feedback status.
func ValidFeedbackStatus(s string) bool {
	switch s {
	case FeedbackStatusOpen, FeedbackStatusInProgress, FeedbackStatusResolved, FeedbackStatusRejected:
		return true
	}
	return false
}
