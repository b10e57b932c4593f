package model

import "time"

// DayLayout is the calendar-day format used everywhere a report date
// is compared or persisted by day.
const DayLayout = "2006-01-02"

// ReportType identifies how a report came into existence.
type ReportType string

const (
	// ReportTypeRegular is the daily good/bad self-report authored on
	// this device.
	ReportTypeRegular ReportType = "regular"

	// ReportTypeCustom is a plan/checklist-derived report authored on
	// this device.
	ReportTypeCustom ReportType = "custom"

	// ReportTypeExternal is a report ingested from the external
	// messaging channel.
	ReportTypeExternal ReportType = "external"

	// ReportTypeShared is a report imported from the shared document
	// used for cross-device merge.
	ReportTypeShared ReportType = "shared"
)

// Internal reports whether the type is authored locally. Only internal
// reports participate in the one-slot-per-day overwrite rule.
func (t ReportType) Internal() bool {
	return t == ReportTypeRegular || t == ReportTypeCustom
}

// Report is a single day's self-report from any origin.
type Report struct {
	// ID is the unique identifier, assigned at creation.
	ID string `json:"id" db:"id"`

	// Date is the calendar day the report belongs to. Time of day
	// within the date carries no identity meaning.
	Date time.Time `json:"date" db:"date"`

	// Type identifies the report's provenance (use ReportType* constants).
	Type ReportType `json:"type" db:"type"`

	// GoodItems and BadItems are free-text entries in insertion order.
	GoodItems []string `json:"good_items" db:"-"`
	BadItems  []string `json:"bad_items" db:"-"`

	// Published flips to true once the report's text has been
	// delivered to the external channel. The transition is one-way.
	Published bool `json:"published" db:"published"`

	// Evaluation records the completion check of a custom report.
	// Nil for every other type.
	Evaluation *Evaluation `json:"evaluation,omitempty" db:"-"`

	// VoiceNotes is populated by queries that join with voice_notes.
	VoiceNotes []VoiceNote `json:"voice_notes,omitempty" db:"-"`

	// External provenance, populated only when Type is external.
	AuthorName      string   `json:"author_name,omitempty" db:"author_name"`
	AuthorHandle    string   `json:"author_handle,omitempty" db:"author_handle"`
	AuthorID        int64    `json:"author_id,omitempty" db:"author_id"`
	SourceMessageID string   `json:"source_message_id,omitempty" db:"source_message_id"`
	SourceText      string   `json:"source_text,omitempty" db:"source_text"`
	VoiceURLs       []string `json:"voice_urls,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Day returns the report's calendar day in DayLayout form.
func (r Report) Day() string {
	return r.Date.Format(DayLayout)
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Format(DayLayout) == b.Format(DayLayout)
}

// Evaluation is the positional completion check of a custom report:
// Results[i] judges GoodItems[i] at the time of evaluation.
type Evaluation struct {
	Evaluated bool   `json:"evaluated"`
	Results   []bool `json:"results"`
}

// VoiceNote is a recorded audio attachment owned by a report. The
// underlying file belongs to the referencing report until detached.
type VoiceNote struct {
	ID        string    `json:"id" db:"id"`
	ReportID  string    `json:"report_id" db:"report_id"`
	Path      string    `json:"path" db:"path"`
	DurationSec int     `json:"duration_sec" db:"duration_sec"`
	SourceURL string    `json:"source_url,omitempty" db:"source_url"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
