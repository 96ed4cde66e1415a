package models

import "time"

// FeedbackBox is a named collection point bound to one externally hosted form.
//
// FormID is assigned once at creation and never changes. QRCodeURL and
// FormURL are not stored: they are recomputed from FormID every time a box
// is read.
type FeedbackBox struct {
	ID          string
	UserID      string
	Name        string
	Description string
	FormID      string
	CreatedAt   time.Time

	QRCodeURL string
	FormURL   string
}

// BoxOverview is one row of the dashboard's per-box table.
type BoxOverview struct {
	Box             *FeedbackBox
	SubmissionCount int64
}
