package model

// Status is the derived state of today's regular report.
type Status string

const (
	// StatusNotStarted: no report yet and the entry window is open
	// (or the force-unlock override is set).
	StatusNotStarted Status = "not_started"

	// StatusInProgress: a report exists, is not yet published, and the
	// entry window is open.
	StatusInProgress Status = "in_progress"

	// StatusSent: today's report has been published to the channel.
	StatusSent Status = "sent"

	// StatusNotCreated: no report exists and the entry window is closed.
	StatusNotCreated Status = "not_created"

	// StatusNotSent: a report exists but was never published before the
	// entry window closed.
	StatusNotSent Status = "not_sent"
)

// ActiveWindow is the daily local-hour range during which report
// creation and editing is permitted. The range is half-open:
// [StartHour, EndHour).
type ActiveWindow struct {
	StartHour int `mapstructure:"start_hour" yaml:"start_hour"`
	EndHour   int `mapstructure:"end_hour" yaml:"end_hour"`
}

// Contains reports whether the given local hour falls inside the window.
func (w ActiveWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}
