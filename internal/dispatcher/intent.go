package dispatcher

import "strings"

// Intent is the classified purpose of an inbound chat message. Classification
// lives behind this single function so a model-based classifier could replace
// the keyword rules without touching dispatch.
type Intent int

const (
	IntentGenericChat Intent = iota
	IntentSchedule
	IntentUpdateTitle
	IntentReschedule
	IntentCancel
)

var scheduleKeywords = []string{"schedule", "meeting", "call", "event", "calendar", "appointment"}

var rescheduleKeywords = []string{"reschedule", "change date", "change time", "move"}

// ClassifyIntent classifies the message text. Replies to a tracked
// confirmation allow edit and cancel intents; elsewhere cancel is too
// ambiguous and only update and schedule intents are recognized.
func ClassifyIntent(text string, isReply bool) Intent {
	lower := strings.ToLower(text)

	if isReply && (strings.Contains(lower, "cancel") || strings.Contains(lower, "delete")) {
		return IntentCancel
	}

	if strings.Contains(lower, "change title") ||
		(strings.Contains(lower, "change") && strings.Contains(lower, "title")) {
		return IntentUpdateTitle
	}

	for _, keyword := range rescheduleKeywords {
		if strings.Contains(lower, keyword) {
			return IntentReschedule
		}
	}

	if isReply {
		return IntentGenericChat
	}

	for _, keyword := range scheduleKeywords {
		if strings.Contains(lower, keyword) {
			return IntentSchedule
		}
	}

	return IntentGenericChat
}

// extractNewTitle pulls the new title out of a "change title to X" style
// message: everything after the first literal "title", with a leading "to"
// stripped. Anchoring on the first occurrence keeps titles that themselves
// contain the word intact.
func extractNewTitle(text string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, "title")
	if idx < 0 {
		return ""
	}

	rest := strings.TrimSpace(text[idx+len("title"):])
	restLower := strings.ToLower(rest)
	if restLower == "to" {
		return ""
	}
	if strings.HasPrefix(restLower, "to ") {
		rest = strings.TrimSpace(rest[3:])
	}
	return rest
}
