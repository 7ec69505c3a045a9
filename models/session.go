package models

// Session is the per-user continuity record, keyed by the channel address.
// It is advisory state: overwritten on every successful report submission
// (last writer wins) and never consulted for correctness.
type Session struct {
	UserID        string `json:"userId"`
	LastIssueID   string `json:"lastIssueId"`
	Timestamp     int64  `json:"timestamp"`
	MediaAttached string `json:"mediaAttached,omitempty"`
}
