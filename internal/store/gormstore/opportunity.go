package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/natowatch/natowatch/internal/domain"
)

// List sort keys. SortClosingDateAsc is the default: soonest deadline first,
// records without a parsed deadline last.
const (
	SortClosingDateAsc  = "closing_date_asc"
	SortClosingDateDesc = "closing_date_desc"
	SortRecentlyUpdated = "recently_updated"
	SortRecentlyAdded   = "recently_added"
	SortNameAsc         = "name_asc"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListFilter narrows and orders an opportunity listing.
type ListFilter struct {
	IsActive         *bool
	OpportunityTypes []string
	NATOBodies       []string
	// Search matches opportunity_name and opportunity_code, case-insensitive.
	Search string

	ClosingIn7Days  bool
	NewThisWeek     bool
	UpdatedThisWeek bool

	Sort     string
	Page     int
	PageSize int

	// Now anchors the relative-window filters. Zero means time.Now.
	Now time.Time
}

// OpportunityRepo is the opportunities table repository. It satisfies the
// reconciliation engine's Store interface and backs the HTTP listing API.
type OpportunityRepo struct {
	db *gorm.DB
}

func NewOpportunityRepo(db *gorm.DB) *OpportunityRepo {
	return &OpportunityRepo{db: db}
}

// FindByScope returns every record for one (nato_body, category) pair,
// active or not. The reconciler needs retired records too so a returning
// code does not read as new.
func (r *OpportunityRepo) FindByScope(ctx context.Context, natoBody, category string) ([]*domain.Opportunity, error) {
	var recs []*domain.Opportunity
	err := r.db.WithContext(ctx).
		Where("nato_body = ? AND opportunity_type = ?", natoBody, category).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// FindByCode returns the record with the given code, or (nil, nil) when
// absent.
func (r *OpportunityRepo) FindByCode(ctx context.Context, code string) (*domain.Opportunity, error) {
	var rec domain.Opportunity
	err := r.db.WithContext(ctx).Where("opportunity_code = ?", code).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *OpportunityRepo) Create(ctx context.Context, opp *domain.Opportunity) error {
	return r.db.WithContext(ctx).Create(opp).Error
}

func (r *OpportunityRepo) Update(ctx context.Context, opp *domain.Opportunity) error {
	return r.db.WithContext(ctx).Save(opp).Error
}

// RetireExpired deactivates every active record whose parsed closing date is
// strictly before now. Records without a parsed date are exempt.
func (r *OpportunityRepo) RetireExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Opportunity{}).
		Where("is_active = ? AND bid_closing_date_parsed IS NOT NULL AND bid_closing_date_parsed < ?", true, now).
		Updates(map[string]any{"is_active": false, "updated_at": now})
	return res.RowsAffected, res.Error
}

// GetByID returns one record, or (nil, nil) when absent.
func (r *OpportunityRepo) GetByID(ctx context.Context, id uint) (*domain.Opportunity, error) {
	var rec domain.Opportunity
	err := r.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List applies the filter and returns one page plus the total match count.
func (r *OpportunityRepo) List(ctx context.Context, f ListFilter) ([]*domain.Opportunity, int64, error) {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	q := r.db.WithContext(ctx).Model(&domain.Opportunity{})

	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if len(f.OpportunityTypes) > 0 {
		q = q.Where("opportunity_type IN ?", f.OpportunityTypes)
	}
	if len(f.NATOBodies) > 0 {
		q = q.Where("nato_body IN ?", f.NATOBodies)
	}
	if f.Search != "" {
		needle := "%" + f.Search + "%"
		q = q.Where("opportunity_name LIKE ? OR opportunity_code LIKE ?", needle, needle)
	}
	if f.ClosingIn7Days {
		q = q.Where("bid_closing_date_parsed IS NOT NULL AND bid_closing_date_parsed >= ? AND bid_closing_date_parsed <= ?",
			now, now.Add(7*24*time.Hour))
	}
	if f.NewThisWeek {
		q = q.Where("created_at >= ?", now.Add(-7*24*time.Hour))
	}
	if f.UpdatedThisWeek {
		// last_update_at, not updated_at: touches from unchanged passes
		// advance updated_at without any content change.
		q = q.Where("last_update_at >= ?", now.Add(-7*24*time.Hour))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case SortClosingDateDesc:
		q = q.Order("bid_closing_date_parsed IS NULL").Order("bid_closing_date_parsed DESC")
	case SortRecentlyUpdated:
		q = q.Order("updated_at DESC")
	case SortRecentlyAdded:
		q = q.Order("created_at DESC")
	case SortNameAsc:
		q = q.Order("opportunity_name COLLATE NOCASE ASC")
	default:
		q = q.Order("bid_closing_date_parsed IS NULL").Order("bid_closing_date_parsed ASC")
	}
	q = q.Order("id ASC")

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	var recs []*domain.Opportunity
	err := q.Offset((page - 1) * size).Limit(size).Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
