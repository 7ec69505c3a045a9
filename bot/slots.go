package bot

// Slot and session attribute names shared with the external resolver and the
// channel gateway.
const (
	SlotIssueType    = "IssueType"
	SlotUserLocation = "UserLocation"
	SlotTrackingID   = "TrackingID"
	SlotRatingScore  = "RatingScore"
	SlotIssueKeyword = "IssueKeyword"
	SlotTimeframe    = "Timeframe"
	SlotReportType   = "ReportType"

	// SessionKeyLocationData carries a GPS pin from the channel gateway for
	// the next report turn only. Format: "LAT:<lat>|LONG:<long>".
	SessionKeyLocationData = "LocationData"
)

// ReportFields is the validated field set for one report submission.
type ReportFields struct {
	Description string
	Location    string
}

// ResolveReportFields normalizes the report slots and session attributes into
// typed fields. A GPS pin in the session attributes takes precedence over any
// free-text location slot; with neither present resolution fails.
func ResolveReportFields(slots map[string]*Slot, sessionAttrs map[string]string) (*ReportFields, error) {
	description := slotValue(slots, SlotIssueType)
	locationText := slotValue(slots, SlotUserLocation)

	var location string
	switch {
	case sessionAttrs[SessionKeyLocationData] != "":
		location = "GPS Coordinates: " + sessionAttrs[SessionKeyLocationData]
	case locationText != "":
		location = locationText
	default:
		return nil, &ValidationError{Prompt: msgMissingLocation}
	}

	if description == "" {
		return nil, &ValidationError{Prompt: msgMissingDescription}
	}

	return &ReportFields{Description: description, Location: location}, nil
}
