package scrape

import (
	"reflect"
	"testing"
	"time"

	"github.com/natowatch/natowatch/internal/domain"
)

var t0 = time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)

func baseFields() domain.FieldSet {
	return domain.FieldSet{
		OpportunityName: "Provision of Training Support",
		URL:             "https://x.int/c/ifib-act-sact-26-07/",
		PDFURL:          "https://x.int/docs/ifib026007.pdf",
		NATOBody:        "ACT",
		OpportunityType: "IFIB",
		BidClosingDate:  "15 November 2026",
	}
}

func TestNewRecord(t *testing.T) {
	recNew := NewRecord("ifib-act-sact-26-07", baseFields(), t0)

	if recNew.OpportunityCode != "ifib-act-sact-26-07" {
		t.Errorf("code = %q", recNew.OpportunityCode)
	}
	if !recNew.IsActive {
		t.Error("new record must be active")
	}
	if recNew.AmendmentCount != 0 || recNew.HasAmendments {
		t.Error("new record must have no amendments")
	}
	if recNew.UpdateCount != 0 {
		t.Errorf("creation is not an update, update_count = %d", recNew.UpdateCount)
	}
	if recNew.LastCheckedAt == nil || !recNew.LastCheckedAt.Equal(t0) {
		t.Error("last_checked_at not set to creation time")
	}
	if got := recNew.ChangedFields(); len(got) != 0 {
		t.Errorf("new record should have empty change set, got %v", got)
	}
	if recNew.OpportunityName != "Provision of Training Support" {
		t.Errorf("field set not applied: %q", recNew.OpportunityName)
	}
}

func TestApplyContentNoChange(t *testing.T) {
	recA := NewRecord("ifib-act-sact-26-07", baseFields(), t0)
	later := t0.Add(time.Hour)

	changed := ApplyContent(recA, baseFields(), later)

	if len(changed) != 0 {
		t.Errorf("identical fields should change nothing, got %v", changed)
	}
	if recA.UpdateCount != 0 {
		t.Errorf("update_count = %d, want 0", recA.UpdateCount)
	}
	if recA.LastUpdateAt != nil {
		t.Error("last_update_at must stay unset without changes")
	}
	if recA.LastCheckedAt == nil || !recA.LastCheckedAt.Equal(later) {
		t.Error("last_checked_at must advance even without changes")
	}
}

func TestApplyContentDiff(t *testing.T) {
	recA := NewRecord("ifib-act-sact-26-07", baseFields(), t0)

	f := baseFields()
	f.BidClosingDate = "30 November 2026"
	f.Summary = "extended scope"

	later := t0.Add(time.Hour)
	changed := ApplyContent(recA, f, later)

	want := []string{"summary", "bid_closing_date"}
	if !reflect.DeepEqual(changed, want) {
		t.Errorf("changed = %v, want %v", changed, want)
	}
	if recA.UpdateCount != 1 {
		t.Errorf("update_count = %d, want 1", recA.UpdateCount)
	}
	if recA.LastUpdateAt == nil || !recA.LastUpdateAt.Equal(later) {
		t.Error("last_update_at must advance with a content change")
	}
	if recA.AmendmentCount != 0 {
		t.Errorf("content change is not an amendment, amendment_count = %d", recA.AmendmentCount)
	}
	if !reflect.DeepEqual(recA.ChangedFields(), want) {
		t.Errorf("stored change set = %v, want %v", recA.ChangedFields(), want)
	}
}

func TestApplyContentReplacesChangeSet(t *testing.T) {
	recA := NewRecord("ifib-act-sact-26-07", baseFields(), t0)

	f := baseFields()
	f.Summary = "first edit"
	ApplyContent(recA, f, t0.Add(time.Hour))

	f2 := f
	f2.ContractType = "firm fixed price"
	ApplyContent(recA, f2, t0.Add(2*time.Hour))

	got := recA.ChangedFields()
	want := []string{"contract_type"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("change set = %v, want only the latest change %v", got, want)
	}
	if recA.UpdateCount != 2 {
		t.Errorf("update_count = %d, want 2", recA.UpdateCount)
	}
}

func TestApplyAmendment(t *testing.T) {
	recA := NewRecord("ifib-act-sact-26-07", baseFields(), t0)
	later := t0.Add(24 * time.Hour)

	f := baseFields()
	f.URL = "https://x.int/c/ifib-act-sact-26-07-amendment-1/"
	f.PDFURL = "https://x.int/docs/ifib026007_amdt1.pdf"

	changed := ApplyAmendment(recA, f, later)

	if recA.AmendmentCount != 1 {
		t.Errorf("amendment_count = %d, want 1", recA.AmendmentCount)
	}
	if !recA.HasAmendments {
		t.Error("has_amendments must be true")
	}
	if recA.LastAmendmentAt == nil || !recA.LastAmendmentAt.Equal(later) {
		t.Errorf("last_amendment_at = %v, want %v", recA.LastAmendmentAt, later)
	}
	if recA.UpdateCount != 1 {
		t.Errorf("update_count = %d, want 1 (moves with amendment)", recA.UpdateCount)
	}
	if recA.LastUpdateAt == nil || !recA.LastUpdateAt.Equal(later) {
		t.Errorf("last_update_at = %v, want %v", recA.LastUpdateAt, later)
	}
	if recA.URL != f.URL {
		t.Errorf("url = %q, want the amendment url", recA.URL)
	}
	if !contains(changed, "url") {
		t.Errorf("changed = %v, must include url", changed)
	}
	if !contains(recA.ChangedFields(), "pdf_url") {
		t.Errorf("stored change set %v must include pdf_url", recA.ChangedFields())
	}
}

func TestApplyAmendmentAlwaysRecordsURL(t *testing.T) {
	// Classification keyed on the ending, but the extractor can hand back
	// a URL that equals the stored one. The amendment still counts.
	recA := NewRecord("ifib-act-sact-26-07", baseFields(), t0)

	changed := ApplyAmendment(recA, baseFields(), t0.Add(time.Hour))

	if !contains(changed, "url") {
		t.Errorf("changed = %v, must include url", changed)
	}
	if recA.AmendmentCount != 1 || recA.UpdateCount != 1 {
		t.Errorf("counters = (%d, %d), want (1, 1)", recA.AmendmentCount, recA.UpdateCount)
	}
}

func TestApplyAmendmentTwiceCountsTwice(t *testing.T) {
	recA := NewRecord("ifib-act-sact-26-07", baseFields(), t0)

	f := baseFields()
	f.URL = "https://x.int/c/ifib-act-sact-26-07-amendment-1/"
	ApplyAmendment(recA, f, t0.Add(time.Hour))

	f2 := baseFields()
	f2.URL = "https://x.int/c/ifib-act-sact-26-07-amendment-2/"
	ApplyAmendment(recA, f2, t0.Add(2*time.Hour))

	if recA.AmendmentCount != 2 {
		t.Errorf("amendment_count = %d, want 2", recA.AmendmentCount)
	}
	if recA.UpdateCount != 2 {
		t.Errorf("update_count = %d, want 2", recA.UpdateCount)
	}
}

func TestTouch(t *testing.T) {
	recA := NewRecord("ifib-act-sact-26-07", baseFields(), t0)
	before := *recA

	later := t0.Add(3 * time.Hour)
	Touch(recA, later)

	if recA.LastCheckedAt == nil || !recA.LastCheckedAt.Equal(later) {
		t.Error("last_checked_at must advance")
	}
	if recA.UpdateCount != before.UpdateCount || recA.AmendmentCount != before.AmendmentCount {
		t.Error("touch must not move counters")
	}
	if recA.LastUpdateAt != nil {
		t.Error("touch must not mark a content change")
	}
	if recA.URL != before.URL || recA.BidClosingDate != before.BidClosingDate {
		t.Error("touch must not modify content")
	}
}
