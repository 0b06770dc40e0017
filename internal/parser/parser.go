package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTitle is used when the model did not produce a usable title.
const DefaultTitle = "Untitled Meeting"

const dateTimeLayout = "2006-01-02 15:04"

// Completer is the slice of the language model client the parser needs.
type Completer interface {
	CompleteForJSON(ctx context.Context, prompt string) (string, error)
}

// Draft holds meeting fields extracted from free text. Empty Date/Time mean
// the user did not mention them. Drafts are ephemeral: they are produced
// here, consumed by the dispatcher and never persisted.
type Draft struct {
	Title     string
	Date      string
	Time      string
	Attendees []string
	Adjusted  bool
}

type Service struct {
	llm Completer
	loc *time.Location
}

func NewService(llm Completer, loc *time.Location) *Service {
	return &Service{
		llm: llm,
		loc: loc,
	}
}

// Parse extracts structured meeting fields from the message, resolving
// relative phrases ("tomorrow") against now. It never returns an error: any
// model or decoding failure yields an empty draft with a default title.
func (s *Service) Parse(ctx context.Context, message string, now time.Time) *Draft {
	prompt := s.buildPrompt(message, now)

	reply, err := s.llm.CompleteForJSON(ctx, prompt)
	if err != nil {
		logrus.Warnf("Meeting extraction failed, returning empty draft: %v", err)
		return &Draft{Title: DefaultTitle}
	}

	fields, ok := extractFields(reply)
	if !ok {
		logrus.Warnf("No JSON object found in model reply (%d bytes)", len(reply))
		return &Draft{Title: DefaultTitle}
	}

	draft := &Draft{
		Title:     strings.TrimSpace(fields.Title),
		Date:      strings.TrimSpace(fields.Date),
		Time:      normalizeTime(fields.Time),
		Attendees: normalizeAttendees(fields.Attendees),
	}
	if draft.Title == "" {
		draft.Title = DefaultTitle
	}

	s.bumpPastTime(draft, now)

	return draft
}

func (s *Service) buildPrompt(message string, now time.Time) string {
	return fmt.Sprintf(`Extract structured meeting info from this message:
"%s"

The current date and time is %s (%s).

Return only a JSON object with keys:
title (string, short title-cased summary of the meeting topic),
date (string "YYYY-MM-DD", resolve relative dates like "tomorrow" against the current date),
time (string "HH:MM" in 24-hour format),
attendees (array of email addresses if mentioned).

If date or time is not mentioned, set it to null.`,
		message,
		now.In(s.loc).Format("Monday, 2006-01-02 15:04"),
		s.loc.String())
}

type meetingFields struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Attendees []any  `json:"attendees"`
}

var jsonSpanRe = regexp.MustCompile(`(?s)\{.*\}`)

// extractFields attempts a strict decode of the whole reply first and only
// then falls back to the greedy brace-delimited span, since models tend to
// wrap JSON in prose or code fences.
func extractFields(reply string) (*meetingFields, bool) {
	var fields meetingFields
	if err := json.Unmarshal([]byte(reply), &fields); err == nil {
		return &fields, true
	}

	span := jsonSpanRe.FindString(reply)
	if span == "" {
		return nil, false
	}

	fields = meetingFields{}
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return nil, false
	}
	return &fields, true
}

func normalizeAttendees(raw []any) []string {
	var attendees []string
	for _, entry := range raw {
		s, ok := entry.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		attendees = append(attendees, s)
	}
	return attendees
}

var timeLayouts = []string{"15:04", "3:04PM", "3:04 PM", "3PM", "3 PM"}

// normalizeTime converts the forms the model actually emits to 24-hour HH:MM.
// Anything unrecognized is passed through as given.
func normalizeTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	upper := strings.ToUpper(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format("15:04")
		}
	}
	return raw
}

// bumpPastTime applies the past-time correction policy: a valid (date, time)
// pair strictly before now is moved forward by exactly one day, same
// time-of-day. Unparseable values are left as given.
func (s *Service) bumpPastTime(draft *Draft, now time.Time) {
	if draft.Date == "" || draft.Time == "" {
		return
	}

	start, err := time.ParseInLocation(dateTimeLayout, draft.Date+" "+draft.Time, s.loc)
	if err != nil {
		return
	}

	if start.Before(now) {
		draft.Date = start.AddDate(0, 0, 1).Format("2006-01-02")
		draft.Adjusted = true
	}
}
