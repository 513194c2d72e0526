package scrape

import "github.com/natowatch/natowatch/internal/domain"

// NewItem is a discovered link whose code has no existing record.
type NewItem struct {
	Code string
	Link Link
}

// AmendmentItem pairs a rediscovered link with its existing record when the
// URL ending changed.
type AmendmentItem struct {
	Code   string
	Link   Link
	Record *domain.Opportunity
}

// UnchangedItem is a rediscovered record whose URL ending is unchanged.
type UnchangedItem struct {
	Code   string
	Link   Link
	Record *domain.Opportunity
}

// SkippedLink is a discovered link whose code could not be extracted.
// Data-quality outcome: logged and counted, no record effect.
type SkippedLink struct {
	Link   Link
	Reason string
}

// Classification partitions one discovery pass against the existing record
// set. New, Amended, Unchanged and Vanished are disjoint and collectively
// cover every discovered code and every existing record.
type Classification struct {
	New       []NewItem
	Amended   []AmendmentItem
	Unchanged []UnchangedItem
	Vanished  []*domain.Opportunity
	Skipped   []SkippedLink

	// DuplicateCodes counts discovered links whose code was already seen
	// this pass. The last-seen link wins; the count makes unstable source
	// ordering observable instead of silent.
	DuplicateCodes int
}

// Classify is pure: it mutates nothing and defers all writes to later
// stages, so classification is testable without storage.
//
// Matching is by opportunity code only. URLs are never identity: one
// opportunity holds several URLs over its lifetime as amendments land.
func Classify(links []Link, existing []*domain.Opportunity) Classification {
	var c Classification

	// code -> last-seen link, preserving first-seen order for determinism.
	byCode := make(map[string]Link, len(links))
	order := make([]string, 0, len(links))
	for _, link := range links {
		code, err := ExtractOpportunityCode(link.URL)
		if err != nil {
			c.Skipped = append(c.Skipped, SkippedLink{Link: link, Reason: err.Error()})
			continue
		}
		if _, seen := byCode[code]; seen {
			c.DuplicateCodes++
		} else {
			order = append(order, code)
		}
		byCode[code] = link
	}

	records := make(map[string]*domain.Opportunity, len(existing))
	for _, rec := range existing {
		records[rec.OpportunityCode] = rec
	}

	for _, code := range order {
		link := byCode[code]
		rec, ok := records[code]
		if !ok {
			c.New = append(c.New, NewItem{Code: code, Link: link})
			continue
		}
		if URLsDifferByEnding(link.URL, rec.URL) {
			c.Amended = append(c.Amended, AmendmentItem{Code: code, Link: link, Record: rec})
		} else {
			c.Unchanged = append(c.Unchanged, UnchangedItem{Code: code, Link: link, Record: rec})
		}
	}

	for _, rec := range existing {
		if _, found := byCode[rec.OpportunityCode]; !found {
			c.Vanished = append(c.Vanished, rec)
		}
	}

	return c
}
