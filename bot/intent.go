package bot

// Intent is the closed set of conversational intents this engine fulfills.
// The external resolver owns recognition; anything outside this set is a
// resolver/engine contract mismatch, not user error.
type Intent string

const (
	IntentReportIssue  Intent = "ReportIssue"
	IntentTrackStatus  Intent = "TrackStatus"
	IntentRateService  Intent = "RateService"
	IntentAdminSummary Intent = "AdminSummary"
	IntentRetrieveID   Intent = "RetrieveID"
	IntentWelcome      Intent = "WelcomeIntent"

	// Routing-only intents: no slots, no business logic. Control is handed
	// back to the resolver's own flow.
	IntentStartReport    Intent = "StartReport"
	IntentForgotIDTrigger Intent = "ForgotIdTrigger"
)

// ParseIntent maps a resolver intent name onto the closed set.
func ParseIntent(name string) (Intent, bool) {
	switch Intent(name) {
	case IntentReportIssue, IntentTrackStatus, IntentRateService,
		IntentAdminSummary, IntentRetrieveID, IntentWelcome,
		IntentStartReport, IntentForgotIDTrigger:
		return Intent(name), true
	}
	return "", false
}

// FulfillmentState is the terminal outcome of one dispatcher invocation.
type FulfillmentState string

const (
	StateFulfilled FulfillmentState = "Fulfilled"
	StateFailed    FulfillmentState = "Failed"
	StateDelegated FulfillmentState = "Delegated"
)

// Slot carries one extracted slot value. A slot that is present but has no
// interpretable value is treated the same as an absent one.
type Slot struct {
	Value *SlotValue `json:"value,omitempty"`
}

type SlotValue struct {
	InterpretedValue string `json:"interpretedValue,omitempty"`
}

// IntentRequest is one resolved conversational turn.
type IntentRequest struct {
	IntentName        string            `json:"intentName" binding:"required"`
	Slots             map[string]*Slot  `json:"slots"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
	SessionID         string            `json:"channelSessionId"`
}

// IntentResponse is the dispatcher's terminal answer for one turn. The session
// attributes are always the inbound ones, echoed untouched; the durable
// session record is a separate channel.
type IntentResponse struct {
	State             FulfillmentState  `json:"fulfillmentState"`
	Message           string            `json:"messageText,omitempty"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
}

// slotValue safely extracts the interpreted value of a named slot.
func slotValue(slots map[string]*Slot, name string) string {
	s, ok := slots[name]
	if !ok || s == nil || s.Value == nil {
		return ""
	}
	return s.Value.InterpretedValue
}
