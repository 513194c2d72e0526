package domain

import "time"

// Roadmap categories.
const (
	RoadmapCategoryNewFeature  = "new_feature"
	RoadmapCategoryImprovement = "improvement"
)

// Roadmap statuses.
const (
	RoadmapStatusPlanned    = "planned"
	RoadmapStatusInProgress = "in_progress"
	RoadmapStatusCompleted  = "completed"
	RoadmapStatusCancelled  = "cancelled"
)

// RoadmapItem is a publicly visible planned change, usually promoted from
// one or more feedback entries.
type RoadmapItem struct {
	ID uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	Title       string `gorm:"column:title;not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	Category    string `gorm:"column:category;not null;index" json:"category"`
	Status      string `gorm:"column:status;not null;default:planned;index" json:"status"`
	// Lower priority sorts first.
	Priority *int `gorm:"column:priority;index" json:"priority,omitempty"`

	TargetDate *time.Time `gorm:"column:target_date" json:"target_date,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (RoadmapItem) TableName() string {
	return "roadmap_items"
}
