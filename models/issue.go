package models

// IssueStatus enum
type IssueStatus string

const (
	StatusNew        IssueStatus = "New"
	StatusProcessing IssueStatus = "Processing"
	StatusCompleted  IssueStatus = "Completed"
)

// IssuePriority enum (closed vocabulary, enforced by the classifier adapter)
type IssuePriority string

const (
	PriorityHigh   IssuePriority = "HIGH"
	PriorityMedium IssuePriority = "MEDIUM"
	PriorityLow    IssuePriority = "LOW"
)

// DefaultCompletionDate is the ExpectedCompletionDate of every new report
// until an administrator schedules it.
const DefaultCompletionDate = "Under Review"

// Issue represents one reported civic problem.
// IssueID, Timestamp, ReporterID, IssueType and Location are immutable after
// creation; Status and ExpectedCompletionDate are mutated by admin updates.
type Issue struct {
	IssueID                string        `bson:"_id" json:"issueId"`
	Timestamp              int64         `bson:"timestamp" json:"timestamp"`
	ReporterID             string        `bson:"reporterId" json:"reporterId"`
	IssueType              string        `bson:"issueType" json:"issueType"`
	Location               string        `bson:"location" json:"location"`
	Status                 IssueStatus   `bson:"status" json:"status"`
	Priority               IssuePriority `bson:"priority" json:"priority"`
	ExpectedCompletionDate string        `bson:"expectedCompletionDate" json:"expectedCompletionDate"`
	StatusLastModified     int64         `bson:"statusLastModified,omitempty" json:"statusLastModified,omitempty"`
}

// ValidPriority reports whether p is one of the three legal priorities.
func ValidPriority(p IssuePriority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
