package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

func TestEventTimes(t *testing.T) {
	loc := kolkata(t)

	tests := []struct {
		name      string
		date      string
		timeOfDay string
		wantErr   bool
	}{
		{name: "valid pair", date: "2025-10-28", timeOfDay: "10:00"},
		{name: "bad date", date: "tomorrow", timeOfDay: "10:00", wantErr: true},
		{name: "bad time", date: "2025-10-28", timeOfDay: "10am", wantErr: true},
		{name: "empty both", date: "", timeOfDay: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := eventTimes(tt.date, tt.timeOfDay, loc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, time.Date(2025, 10, 28, 10, 0, 0, 0, loc), start)
			assert.Equal(t, time.Hour, end.Sub(start))
		})
	}
}

func TestMergeWhen(t *testing.T) {
	loc := kolkata(t)
	current := time.Date(2025, 10, 28, 10, 0, 0, 0, loc)

	tests := []struct {
		name    string
		newDate string
		newTime string
		want    time.Time
		wantErr bool
	}{
		{
			name:    "time only keeps date",
			newTime: "15:00",
			want:    time.Date(2025, 10, 28, 15, 0, 0, 0, loc),
		},
		{
			name:    "date only keeps time",
			newDate: "2025-10-31",
			want:    time.Date(2025, 10, 31, 10, 0, 0, 0, loc),
		},
		{
			name:    "both replace both",
			newDate: "2025-11-01",
			newTime: "09:30",
			want:    time.Date(2025, 11, 1, 9, 30, 0, 0, loc),
		},
		{name: "neither is an error", wantErr: true},
		{name: "bad date", newDate: "friday", wantErr: true},
		{name: "bad time", newTime: "3pm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mergeWhen(current, tt.newDate, tt.newTime, loc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		name    string
		in      *gcal.EventDateTime
		want    time.Time
		wantErr bool
	}{
		{
			name: "datetime",
			in:   &gcal.EventDateTime{DateTime: "2025-10-28T10:00:00+05:30"},
			want: time.Date(2025, 10, 28, 4, 30, 0, 0, time.UTC),
		},
		{
			name: "all-day date",
			in:   &gcal.EventDateTime{Date: "2025-10-28"},
			want: time.Date(2025, 10, 28, 0, 0, 0, 0, time.UTC),
		},
		{name: "nil", in: nil, wantErr: true},
		{name: "empty", in: &gcal.EventDateTime{}, wantErr: true},
		{name: "garbage", in: &gcal.EventDateTime{DateTime: "not-a-time"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEventTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
