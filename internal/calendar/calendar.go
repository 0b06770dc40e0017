package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ErrNoUpcomingEvent is returned when an update targets "the soonest upcoming
// event" and the calendar has none. It is a distinct not-found result, not a
// transport failure.
var ErrNoUpcomingEvent = errors.New("no upcoming event found")

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	dateTimeLayout = "2006-01-02 15:04"
	eventDuration  = time.Hour
)

// Event is the slice of a provider event the bot cares about. The provider
// owns the record; the bot holds only the id and link.
type Event struct {
	ID        string
	Title     string
	Start     time.Time
	End       time.Time
	Attendees []string
	Link      string
}

// CreateEvent creates a 1-hour event starting at the given local date and
// time. An unparseable (date, time) pair is an explicit error: there is no
// safe default on this path.
func (c *Client) CreateEvent(ctx context.Context, title, date, timeStr string, attendees []string) (*Event, error) {
	start, end, err := eventTimes(date, timeStr, c.loc)
	if err != nil {
		return nil, err
	}

	srv, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	body := &gcal.Event{
		Summary: title,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
	}
	for _, email := range attendees {
		body.Attendees = append(body.Attendees, &gcal.EventAttendee{Email: email})
	}

	created, err := srv.Events.Insert(c.calendarID, body).SendUpdates("all").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	logrus.Infof("Calendar event created: id=%s title=%q start=%s", created.Id, title, start.Format(time.RFC3339))
	return c.fromGoogleEvent(created), nil
}

// FindSoonestUpcoming returns the event with the earliest start at or after
// the current time, or ErrNoUpcomingEvent.
func (c *Client) FindSoonestUpcoming(ctx context.Context) (*Event, error) {
	srv, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	events, err := srv.Events.List(c.calendarID).
		TimeMin(time.Now().In(c.loc).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	if len(events.Items) == 0 {
		return nil, ErrNoUpcomingEvent
	}

	return c.fromGoogleEvent(events.Items[0]), nil
}

// UpdateTitle renames the event. An empty eventID targets the soonest
// upcoming event.
func (c *Client) UpdateTitle(ctx context.Context, eventID, newTitle string) (*Event, error) {
	eventID, err := c.resolveEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	srv, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := srv.Events.Patch(c.calendarID, eventID, &gcal.Event{Summary: newTitle}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event title: %w", err)
	}

	logrus.Infof("Calendar event renamed: id=%s title=%q", eventID, newTitle)
	return c.fromGoogleEvent(updated), nil
}

// UpdateWhen moves the event to a new date and/or time. A missing part is
// retained from the current start; the 1-hour duration is preserved. An empty
// eventID targets the soonest upcoming event.
func (c *Client) UpdateWhen(ctx context.Context, eventID, newDate, newTime string) (*Event, error) {
	eventID, err := c.resolveEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	srv, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := srv.Events.Get(c.calendarID, eventID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %s: %w", eventID, err)
	}

	currentStart, err := parseEventTime(existing.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current event start: %w", err)
	}

	start, err := mergeWhen(currentStart.In(c.loc), newDate, newTime, c.loc)
	if err != nil {
		return nil, err
	}
	end := start.Add(eventDuration)

	existing.Start = &gcal.EventDateTime{
		DateTime: start.Format(time.RFC3339),
		TimeZone: c.loc.String(),
	}
	existing.End = &gcal.EventDateTime{
		DateTime: end.Format(time.RFC3339),
		TimeZone: c.loc.String(),
	}

	updated, err := srv.Events.Update(c.calendarID, eventID, existing).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule event: %w", err)
	}

	logrus.Infof("Calendar event rescheduled: id=%s start=%s", eventID, start.Format(time.RFC3339))
	return c.fromGoogleEvent(updated), nil
}

// DeleteEvent removes the event. A missing event is treated as already
// deleted.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("missing calendar event ID")
	}

	srv, err := c.service(ctx)
	if err != nil {
		return err
	}

	if _, err := srv.Events.Get(c.calendarID, eventID).Do(); err != nil {
		logrus.Warnf("Event %s not found while deleting: %v", eventID, err)
		return nil
	}

	if err := srv.Events.Delete(c.calendarID, eventID).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}

	logrus.Infof("Calendar event deleted: id=%s", eventID)
	return nil
}

func (c *Client) resolveEventID(ctx context.Context, eventID string) (string, error) {
	if eventID != "" {
		return eventID, nil
	}

	event, err := c.FindSoonestUpcoming(ctx)
	if err != nil {
		return "", err
	}
	return event.ID, nil
}

func (c *Client) service(ctx context.Context) (*gcal.Service, error) {
	client, err := c.httpClient(ctx)
	if err != nil {
		return nil, err
	}

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return srv, nil
}

func (c *Client) fromGoogleEvent(g *gcal.Event) *Event {
	event := &Event{
		ID:    g.Id,
		Title: g.Summary,
		Link:  g.HtmlLink,
	}

	if start, err := parseEventTime(g.Start); err == nil {
		event.Start = start.In(c.loc)
	}
	if end, err := parseEventTime(g.End); err == nil {
		event.End = end.In(c.loc)
	}
	for _, attendee := range g.Attendees {
		event.Attendees = append(event.Attendees, attendee.Email)
	}

	return event
}

func eventTimes(date, timeStr string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateTimeLayout, date+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date/time format: %s %s", date, timeStr)
	}
	return start, start.Add(eventDuration), nil
}

func mergeWhen(current time.Time, newDate, newTime string, loc *time.Location) (time.Time, error) {
	if newDate == "" && newTime == "" {
		return time.Time{}, errors.New("neither a new date nor a new time was given")
	}

	date := current.Format(dateLayout)
	if newDate != "" {
		if _, err := time.ParseInLocation(dateLayout, newDate, loc); err != nil {
			return time.Time{}, fmt.Errorf("invalid date format: %s", newDate)
		}
		date = newDate
	}

	clock := current.Format(timeLayout)
	if newTime != "" {
		if _, err := time.Parse(timeLayout, newTime); err != nil {
			return time.Time{}, fmt.Errorf("invalid time format: %s", newTime)
		}
		clock = newTime
	}

	start, err := time.ParseInLocation(dateTimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time format: %s %s", date, clock)
	}
	return start, nil
}

func parseEventTime(eventTime *gcal.EventDateTime) (time.Time, error) {
	if eventTime == nil {
		return time.Time{}, errors.New("event has no time")
	}
	if eventTime.DateTime != "" {
		return time.Parse(time.RFC3339, eventTime.DateTime)
	}
	if eventTime.Date != "" {
		return time.Parse(dateLayout, eventTime.Date)
	}
	return time.Time{}, errors.New("unrecognized event time format")
}
