package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/natowatch/natowatch/internal/domain"
)

func TestFeedbackCreateDefaults(t *testing.T) {
	repo := NewFeedbackRepo(openTestDB(t))

	fb := &domain.Feedback{
		Type:        domain.FeedbackTypeBug,
		Title:       "Closing date off by one",
		Description: "The listing shows yesterday's deadline as still open.",
	}
	if err := repo.Create(context.Background(), fb); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if fb.Status != domain.FeedbackStatusOpen {
		t.Errorf("status = %q, want open by default", fb.Status)
	}
	if fb.SubmittedAt.IsZero() {
		t.Error("submitted_at must be set on create")
	}
}

func TestFeedbackListFilters(t *testing.T) {
	repo := NewFeedbackRepo(openTestDB(t))
	ctx := context.Background()

	entries := []*domain.Feedback{
		{Type: domain.FeedbackTypeBug, Title: "b1", Description: "d", SubmittedAt: now},
		{Type: domain.FeedbackTypeBug, Title: "b2", Description: "d", Status: domain.FeedbackStatusResolved, SubmittedAt: now.Add(time.Hour)},
		{Type: domain.FeedbackTypeImprovement, Title: "i1", Description: "d", SubmittedAt: now},
	}
	for _, fb := range entries {
		if err := repo.Create(ctx, fb); err != nil {
			t.Fatalf("Create(%s): %v", fb.Title, err)
		}
	}

	bugs, err := repo.List(ctx, domain.FeedbackTypeBug, "")
	if err != nil {
		t.Fatalf("List(bug) error: %v", err)
	}
	if len(bugs) != 2 {
		t.Fatalf("bugs = %d, want 2", len(bugs))
	}
	if bugs[0].Title != "b2" {
		t.Errorf("first bug = %q, want newest first", bugs[0].Title)
	}

	open, err := repo.List(ctx, "", domain.FeedbackStatusOpen)
	if err != nil {
		t.Fatalf("List(open) error: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("open = %d, want 2", len(open))
	}
}
