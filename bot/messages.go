package bot

import (
	"fmt"
	"strings"

	"civicbot-be/models"
)

// User-facing message texts. Wording is idempotent on purpose: a redelivered
// turn produces the identical message.
const (
	msgMissingLocation    = "Error: Location data is required and was not provided."
	msgMissingDescription = "Error: Please provide a description of the issue."
	msgReportWriteFailed  = "I'm sorry, I couldn't save your report just now. Please try again in a moment."

	msgTrackingIDPrompt = "I can't seem to find the ID. Please tell me the 8-character tracking ID for your report, for example: 'What is the status of 1234abcd?'"
	msgTrackingLookupErr = "I'm sorry, I ran into an error trying to look up that ID. Please try again in a moment."

	msgRatingNotNumeric = "Please provide a valid numeric rating between 1 and 5."
	msgRatingOutOfRange = "Please rate service on a scale of 1 to 5."
	msgRatingThanks     = "Thank you for your feedback! Your rating helps us improve service quality."
	msgRatingEmpathy    = " We are sorry the service was poor and will review this with the team."

	msgRetrievePrompt    = "Please provide both the issue keyword and location to search."
	msgRetrieveSearchErr = "An internal error occurred during the database search."
	msgRetrieveNotFound  = "❌ I could not find a matching active report based on those keywords and location. Please ensure the issue description and location are accurate."

	msgWelcome = "Displaying main menu."

	msgNewReport = "Thank you for reporting. Your issue is new."
)

func reportConfirmation(issue *models.Issue, duplicate *models.Issue) string {
	core := msgNewReport
	if duplicate != nil {
		core = fmt.Sprintf("A similar issue was found nearby (ID: %s). We'll link your report to it to avoid duplicates.", duplicate.IssueID)
	}
	return fmt.Sprintf(
		"✅ *Report Confirmed - ID: %s*\n\n%s\n*Issue:* %s\n*Location:* %s\n*Priority:* %s\n*Expected Resolution:* %s (Notification will be sent when scheduled).",
		issue.IssueID, core, issue.IssueType, issue.Location, issue.Priority, issue.ExpectedCompletionDate,
	)
}

func trackStatusMessage(issue *models.Issue) string {
	completion := issue.ExpectedCompletionDate
	if completion == "" {
		completion = models.DefaultCompletionDate
	}
	return fmt.Sprintf(
		"🚨 *Civic Report Status* 🚨\n\n*ID:* %s\n*Issue:* %s\n*Current Status:* %s\n*Priority:* %s\n*Expected Completion:* %s",
		issue.IssueID, issue.IssueType, strings.ToUpper(string(issue.Status)), issue.Priority, completion,
	)
}

func trackNotFoundMessage(trackingID string) string {
	return fmt.Sprintf("Sorry, I could not find a report with the ID *%s*. Please double-check the ID.", trackingID)
}

func retrieveFoundMessage(issue *models.Issue) string {
	return fmt.Sprintf(
		"✅ *Found Report - ID: %s*\n\nYour issue was found based on your description:\n*Issue Type:* %s\n*Location:* %s\n*Status:* %s\nYou can now use this ID for tracking.",
		issue.IssueID, issue.IssueType, issue.Location, issue.Status,
	)
}
