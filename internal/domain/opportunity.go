package domain

import (
	"encoding/json"
	"time"
)

// Opportunity is a persisted NATO procurement posting.
//
// OpportunityCode is the sole identity key across scrape runs. URL is
// deliberately not unique: every amendment changes the URL's trailing
// segment while the code stays fixed, so one opportunity accumulates
// several URLs over its lifetime.
type Opportunity struct {
	ID uint `gorm:"column:id;primaryKey;autoIncrement" json:"id"`

	// Identity
	OpportunityCode string `gorm:"column:opportunity_code;uniqueIndex;not null" json:"opportunity_code"`
	OpportunityType string `gorm:"column:opportunity_type;index" json:"opportunity_type,omitempty"`
	NATOBody        string `gorm:"column:nato_body;index" json:"nato_body,omitempty"`
	OpportunityName string `gorm:"column:opportunity_name;not null" json:"opportunity_name"`
	URL             string `gorm:"column:url;not null" json:"url"`
	PDFURL          string `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
	SourceURL       string `gorm:"column:source_url" json:"source_url,omitempty"`

	// Contract details (extracted upstream, opaque to the reconciler)
	ContractType            string `gorm:"column:contract_type" json:"contract_type,omitempty"`
	ContractDuration        string `gorm:"column:contract_duration" json:"contract_duration,omitempty"`
	EligibleOrganizations   string `gorm:"column:eligible_organizations;type:text" json:"eligible_organizations,omitempty"`
	Summary                 string `gorm:"column:summary;type:text" json:"summary,omitempty"`
	ContactEmail            string `gorm:"column:contact_email" json:"contact_email,omitempty"`
	PartialBiddingAllowed   *bool  `gorm:"column:partial_bidding_allowed" json:"partial_bidding_allowed,omitempty"`
	ClarificationDeadline   string `gorm:"column:clarification_deadline" json:"clarification_deadline,omitempty"`
	BidClosingDate          string `gorm:"column:bid_closing_date" json:"bid_closing_date,omitempty"`
	ExpectedContractAward   string `gorm:"column:expected_contract_award_date" json:"expected_contract_award_date,omitempty"`

	// Parsed dates. BidClosingDateParsed is authoritative for retirement;
	// nil means the record is never auto-retired.
	ClarificationDeadlineParsed *time.Time `gorm:"column:clarification_deadline_parsed;index" json:"clarification_deadline_parsed,omitempty"`
	BidClosingDateParsed        *time.Time `gorm:"column:bid_closing_date_parsed;index" json:"bid_closing_date_parsed,omitempty"`

	// Status. No column default: a default:true tag would make GORM skip
	// the zero value on insert and silently revive retired records.
	IsActive bool `gorm:"column:is_active;not null;index" json:"is_active"`

	// Change tracking. LastUpdateAt moves only when content actually
	// changed; updated_at also moves on unchanged-pass touches.
	UpdateCount       int        `gorm:"column:update_count;not null;default:0" json:"update_count"`
	LastUpdateAt      *time.Time `gorm:"column:last_update_at" json:"last_update_at,omitempty"`
	LastChangedFields string     `gorm:"column:last_changed_fields;type:text" json:"-"`

	// Amendment tracking
	AmendmentCount  int        `gorm:"column:amendment_count;not null;default:0" json:"amendment_count"`
	HasAmendments   bool       `gorm:"column:has_amendments;not null;default:false" json:"has_amendments"`
	LastAmendmentAt *time.Time `gorm:"column:last_amendment_at" json:"last_amendment_at,omitempty"`

	// Timestamps
	CreatedAt     time.Time  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
	LastCheckedAt *time.Time `gorm:"column:last_checked_at" json:"last_checked_at,omitempty"`
	ExtractedAt   *time.Time `gorm:"column:extracted_at" json:"extracted_at,omitempty"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// ChangedFields decodes LastChangedFields. Empty slice when unset or corrupt.
func (o *Opportunity) ChangedFields() []string {
	if o.LastChangedFields == "" {
		return nil
	}
	var fields []string
	if err := json.Unmarshal([]byte(o.LastChangedFields), &fields); err != nil {
		return nil
	}
	return fields
}

// SetChangedFields replaces the stored change set with the given field names.
func (o *Opportunity) SetChangedFields(fields []string) {
	if len(fields) == 0 {
		o.LastChangedFields = ""
		return
	}
	data, err := json.Marshal(fields)
	if err != nil {
		o.LastChangedFields = ""
		return
	}
	o.LastChangedFields = string(data)
}

// FieldSet is one freshly extracted view of an opportunity page. The
// reconciliation engine treats the content opaquely except for diffing.
type FieldSet struct {
	OpportunityName       string
	URL                   string
	PDFURL                string
	SourceURL             string
	OpportunityType       string
	NATOBody              string
	ContractType          string
	ContractDuration      string
	EligibleOrganizations string
	Summary               string
	ContactEmail          string
	PartialBiddingAllowed *bool
	ClarificationDeadline string
	BidClosingDate        string
	ExpectedContractAward string

	ClarificationDeadlineParsed *time.Time
	BidClosingDateParsed        *time.Time
}

// ApplyFieldSet overwrites the record's content with f and returns the names
// of the fields whose value actually changed, in declaration order.
func (o *Opportunity) ApplyFieldSet(f FieldSet) []string {
	var changed []string

	setString := func(name string, dst *string, v string) {
		if *dst != v {
			changed = append(changed, name)
			*dst = v
		}
	}
	setTime := func(name string, dst **time.Time, v *time.Time) {
		if !timePtrEqual(*dst, v) {
			changed = append(changed, name)
			*dst = v
		}
	}

	setString("opportunity_name", &o.OpportunityName, f.OpportunityName)
	setString("url", &o.URL, f.URL)
	setString("pdf_url", &o.PDFURL, f.PDFURL)
	setString("source_url", &o.SourceURL, f.SourceURL)
	setString("opportunity_type", &o.OpportunityType, f.OpportunityType)
	setString("nato_body", &o.NATOBody, f.NATOBody)
	setString("contract_type", &o.ContractType, f.ContractType)
	setString("contract_duration", &o.ContractDuration, f.ContractDuration)
	setString("eligible_organizations", &o.EligibleOrganizations, f.EligibleOrganizations)
	setString("summary", &o.Summary, f.Summary)
	setString("contact_email", &o.ContactEmail, f.ContactEmail)
	setString("clarification_deadline", &o.ClarificationDeadline, f.ClarificationDeadline)
	setString("bid_closing_date", &o.BidClosingDate, f.BidClosingDate)
	setString("expected_contract_award_date", &o.ExpectedContractAward, f.ExpectedContractAward)

	if !boolPtrEqual(o.PartialBiddingAllowed, f.PartialBiddingAllowed) {
		changed = append(changed, "partial_bidding_allowed")
		o.PartialBiddingAllowed = f.PartialBiddingAllowed
	}

	setTime("clarification_deadline_parsed", &o.ClarificationDeadlineParsed, f.ClarificationDeadlineParsed)
	setTime("bid_closing_date_parsed", &o.BidClosingDateParsed, f.BidClosingDateParsed)

	return changed
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
