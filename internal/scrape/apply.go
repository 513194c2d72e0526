package scrape

import (
	"time"

	"github.com/natowatch/natowatch/internal/domain"
)

// NewRecord builds a record for a first-seen opportunity code. Creation is
// not an update: all counters start at zero and the record is active.
func NewRecord(code string, fields domain.FieldSet, now time.Time) *domain.Opportunity {
	rec := &domain.Opportunity{
		OpportunityCode: code,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastCheckedAt:   &now,
		ExtractedAt:     &now,
	}
	rec.ApplyFieldSet(fields)
	rec.SetChangedFields(nil)
	return rec
}

// ApplyContent overwrites the record's content fields with the fresh
// extraction and returns the names of fields that actually changed.
// last_changed_fields reflects only the most recent change (replaced, not
// appended); update_count advances only when something changed;
// last_checked_at always advances.
func ApplyContent(rec *domain.Opportunity, fields domain.FieldSet, now time.Time) []string {
	changed := rec.ApplyFieldSet(fields)
	if len(changed) > 0 {
		rec.SetChangedFields(changed)
		rec.UpdateCount++
		rec.LastUpdateAt = &now
		rec.ExtractedAt = &now
	}
	rec.LastCheckedAt = &now
	rec.UpdatedAt = now
	return changed
}

// ApplyAmendment applies the fresh extraction to a record classified as an
// amendment. Every invocation advances amendment_count by exactly one and
// update_count by exactly one; the two counters track independently but move
// together here. The URL ending differed or the record would not have been
// classified as amended, so "url" is always part of the recorded change set
// even when the re-extracted URL normalizes back to the stored one.
func ApplyAmendment(rec *domain.Opportunity, fields domain.FieldSet, now time.Time) []string {
	changed := rec.ApplyFieldSet(fields)
	if !contains(changed, "url") {
		changed = append(changed, "url")
	}
	rec.SetChangedFields(changed)

	rec.UpdateCount++
	rec.LastUpdateAt = &now
	rec.AmendmentCount++
	rec.HasAmendments = true
	rec.LastAmendmentAt = &now

	rec.ExtractedAt = &now
	rec.LastCheckedAt = &now
	rec.UpdatedAt = now
	return changed
}

// Touch is the whole cost of an unchanged record: a timestamp refresh, no
// re-fetch and no re-extraction.
func Touch(rec *domain.Opportunity, now time.Time) {
	rec.LastCheckedAt = &now
	rec.UpdatedAt = now
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
