package models

import "time"

// Submission is one response received through a box's external form.
// SubmissionID is the provider's correlation id, unique per box.
type Submission struct {
	ID            string
	SubmissionID  string
	FeedbackBoxID string
	Data          Payload
	CreatedAt     time.Time
}

// Activity is a submission annotated with its box name, as shown in the
// dashboard feed.
type Activity struct {
	Submission
	BoxName string
}

// DashboardSummary is the aggregated view of everything a user owns.
type DashboardSummary struct {
	TotalBoxes       int
	TotalSubmissions int64
	RecentActivity   []*Activity
	Boxes            []*BoxOverview
}
