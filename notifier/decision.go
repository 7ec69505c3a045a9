package notifier

import (
	"fmt"

	"civicbot-be/models"
)

// Decision is the verdict on one record mutation. Not stored anywhere; the
// same (old, new) pair always yields the same decision and message text.
type Decision struct {
	Notify  bool
	Message string
}

// Decide computes whether a mutation is notification-worthy. old is nil for
// an insert; an absent old status is distinct from any concrete value. Rules
// are evaluated in order, first match wins. When a status change to
// Processing coincides with a completion-date change, the richer date message
// supersedes the plain dispatched one.
func Decide(old, updated *models.Issue) Decision {
	var oldStatus models.IssueStatus
	var oldDate string
	if old != nil {
		oldStatus = old.Status
		oldDate = old.ExpectedCompletionDate
	}

	if updated.Status == oldStatus {
		return Decision{}
	}

	switch updated.Status {
	case models.StatusProcessing:
		if updated.ExpectedCompletionDate != "" && updated.ExpectedCompletionDate != oldDate {
			return Decision{
				Notify: true,
				Message: fmt.Sprintf("🗓️ REVIEWED: Issue %s has an expected completion date of *%s*. We will notify you of further progress.",
					updated.IssueID, updated.ExpectedCompletionDate),
			}
		}
		return Decision{
			Notify:  true,
			Message: fmt.Sprintf("🛠️ UPDATE: Issue %s is now *PROCESSING*. A crew has been dispatched.", updated.IssueID),
		}
	case models.StatusCompleted:
		return Decision{
			Notify: true,
			Message: fmt.Sprintf("✅ RESOLVED: Issue %s has been *COMPLETED*! Please respond with 'Rate Service' to give 1-5 star feedback.",
				updated.IssueID),
		}
	}

	return Decision{}
}
