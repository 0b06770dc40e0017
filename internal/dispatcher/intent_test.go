package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		isReply bool
		want    Intent
	}{
		{name: "schedule keyword", text: "Schedule a meeting tomorrow at 10am", want: IntentSchedule},
		{name: "call keyword", text: "set up a call with the design team", want: IntentSchedule},
		{name: "appointment keyword", text: "book an appointment for Friday", want: IntentSchedule},
		{name: "plain chat", text: "how are you doing today?", want: IntentGenericChat},
		{name: "change title", text: "change title to Daily Sync", want: IntentUpdateTitle},
		{name: "change and title apart", text: "can you change the meeting title please", want: IntentUpdateTitle},
		{name: "reschedule keyword", text: "reschedule to 3pm", want: IntentReschedule},
		{name: "change time phrase", text: "change time to 16:00", want: IntentReschedule},
		{name: "move keyword", text: "move it to Friday", want: IntentReschedule},
		{name: "cancel outside reply is chat", text: "cancel everything", want: IntentGenericChat},
		{name: "cancel in reply", text: "cancel this meeting", isReply: true, want: IntentCancel},
		{name: "delete in reply", text: "please delete it", isReply: true, want: IntentCancel},
		{name: "unrelated reply is chat", text: "thanks, looks good!", isReply: true, want: IntentGenericChat},
		{name: "schedule keyword in reply is chat", text: "nice meeting notes", isReply: true, want: IntentGenericChat},
		{name: "title edit in reply", text: "change title to Planning", isReply: true, want: IntentUpdateTitle},
		{name: "reschedule in reply", text: "reschedule to tomorrow morning", isReply: true, want: IntentReschedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.text, tt.isReply))
		})
	}
}

func TestClassifyIntentIdempotent(t *testing.T) {
	text := "reschedule the call to 5pm"
	first := ClassifyIntent(text, true)
	second := ClassifyIntent(text, true)
	assert.Equal(t, first, second)
}

func TestExtractNewTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "to form", text: "change title to Daily Sync", want: "Daily Sync"},
		{name: "no to", text: "change title Quarterly Review", want: "Quarterly Review"},
		{name: "mixed case", text: "Change Title To Weekly Standup", want: "Weekly Standup"},
		{name: "title word inside new title", text: "change title to Sprint Title Review", want: "Sprint Title Review"},
		{name: "nothing after title", text: "change title", want: ""},
		{name: "bare to", text: "change title to", want: ""},
		{name: "no title word", text: "rename the meeting", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractNewTitle(tt.text))
		})
	}
}
