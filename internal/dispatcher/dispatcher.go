package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"meetingbot/internal/calendar"
	"meetingbot/internal/eventref"
	"meetingbot/internal/parser"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Calendar is the slice of the calendar client the dispatcher needs. An empty
// event id on the update/cancel calls targets the soonest upcoming event.
type Calendar interface {
	CreateEvent(ctx context.Context, title, date, timeStr string, attendees []string) (*calendar.Event, error)
	FindSoonestUpcoming(ctx context.Context) (*calendar.Event, error)
	UpdateTitle(ctx context.Context, eventID, newTitle string) (*calendar.Event, error)
	UpdateWhen(ctx context.Context, eventID, newDate, newTime string) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

type MeetingParser interface {
	Parse(ctx context.Context, message string, now time.Time) *parser.Draft
}

// ActionKind tags the variant of an interpreted Action.
type ActionKind int

const (
	ActionGenericReply ActionKind = iota
	ActionSchedule
	ActionUpdateTitle
	ActionUpdateTime
	ActionUpdateDate
	ActionCancel
)

// Action is the interpreted form of one inbound message. EventID is empty
// when no explicit target is known and the soonest upcoming event should be
// used instead.
type Action struct {
	Kind      ActionKind
	Draft     *parser.Draft
	EventID   string
	RefMsgID  int
	NewTitle  string
	NewDate   string
	NewTime   string
	Text      string
}

// Inbound is the slice of a chat update the dispatcher consumes.
type Inbound struct {
	ChatID    int64
	MessageID int
	Text      string
	ReplyTo   *int
}

// Result is what the transport sends back. Event is set after a successful
// schedule so the adapter can record the confirmation message id.
type Result struct {
	Text  string
	Event *calendar.Event
}

type Service struct {
	calendar Calendar
	llm      Completer
	parser   MeetingParser
	refs     eventref.Store
	now      func() time.Time

	mu        sync.Mutex
	lastEvent map[int64]string
}

func NewService(cal Calendar, llm Completer, meetingParser MeetingParser, refs eventref.Store) *Service {
	return &Service{
		calendar:  cal,
		llm:       llm,
		parser:    meetingParser,
		refs:      refs,
		now:       time.Now,
		lastEvent: make(map[int64]string),
	}
}

// Dispatch interprets and executes one inbound message. Nothing is thrown
// past this boundary: every downstream failure comes back as reply text.
func (s *Service) Dispatch(ctx context.Context, msg Inbound) Result {
	dispatchID := uuid.NewString()
	logrus.Infof("Dispatch %s: chat=%d message=%d", dispatchID, msg.ChatID, msg.MessageID)

	action := s.Interpret(ctx, msg)
	result := s.Execute(ctx, msg.ChatID, action)

	logrus.Infof("Dispatch %s: kind=%d replied %d bytes", dispatchID, action.Kind, len(result.Text))
	return result
}

// Interpret classifies the message into an Action. Replies to tracked
// confirmation messages resolve their event id from the reference store;
// other update intents fall back to the chat's most recently scheduled
// meeting, or an empty id resolved later against the calendar.
func (s *Service) Interpret(ctx context.Context, msg Inbound) Action {
	if msg.ReplyTo != nil {
		if entry, ok := s.refs.Get(*msg.ReplyTo); ok {
			return s.interpretReply(ctx, msg, *msg.ReplyTo, entry)
		}
		return s.interpretUntrackedReply(ctx, msg)
	}

	switch ClassifyIntent(msg.Text, false) {
	case IntentSchedule:
		draft := s.parser.Parse(ctx, msg.Text, s.now())
		return Action{Kind: ActionSchedule, Draft: draft}

	case IntentUpdateTitle:
		return Action{
			Kind:     ActionUpdateTitle,
			EventID:  s.lastEventFor(msg.ChatID),
			NewTitle: extractNewTitle(msg.Text),
		}

	case IntentReschedule:
		return s.rescheduleAction(ctx, msg.Text, s.lastEventFor(msg.ChatID), 0)

	default:
		return Action{Kind: ActionGenericReply, Text: msg.Text}
	}
}

func (s *Service) interpretReply(ctx context.Context, msg Inbound, refMsgID int, entry eventref.Entry) Action {
	switch ClassifyIntent(msg.Text, true) {
	case IntentCancel:
		return Action{Kind: ActionCancel, EventID: entry.EventID, RefMsgID: refMsgID}

	case IntentUpdateTitle:
		return Action{
			Kind:     ActionUpdateTitle,
			EventID:  entry.EventID,
			NewTitle: extractNewTitle(msg.Text),
		}

	case IntentReschedule:
		return s.rescheduleAction(ctx, msg.Text, entry.EventID, refMsgID)

	default:
		prompt := fmt.Sprintf(
			"You are a scheduling assistant. You earlier sent this confirmation:\n%s\n\nThe user replied:\n%s\n\nAnswer the reply briefly and helpfully.",
			entry.ConfirmationText, msg.Text)
		return Action{Kind: ActionGenericReply, Text: prompt}
	}
}

// interpretUntrackedReply handles a reply whose target message is not in the
// reference store. Edit intents fall back to the chat's last scheduled
// meeting; cancel has no resolvable target, so cancel wording must not be
// reinterpreted as a schedule request.
func (s *Service) interpretUntrackedReply(ctx context.Context, msg Inbound) Action {
	switch ClassifyIntent(msg.Text, true) {
	case IntentUpdateTitle:
		return Action{
			Kind:     ActionUpdateTitle,
			EventID:  s.lastEventFor(msg.ChatID),
			NewTitle: extractNewTitle(msg.Text),
		}

	case IntentReschedule:
		return s.rescheduleAction(ctx, msg.Text, s.lastEventFor(msg.ChatID), 0)

	default:
		return Action{Kind: ActionGenericReply, Text: msg.Text}
	}
}

// rescheduleAction re-runs the meeting parser on the message to pull out the
// new date and/or time.
func (s *Service) rescheduleAction(ctx context.Context, text, eventID string, refMsgID int) Action {
	draft := s.parser.Parse(ctx, text, s.now())

	action := Action{
		EventID:  eventID,
		RefMsgID: refMsgID,
		NewDate:  draft.Date,
		NewTime:  draft.Time,
	}
	if draft.Date != "" {
		action.Kind = ActionUpdateDate
	} else {
		action.Kind = ActionUpdateTime
	}
	return action
}

// Execute performs the interpreted action and builds the reply text.
func (s *Service) Execute(ctx context.Context, chatID int64, action Action) Result {
	switch action.Kind {
	case ActionSchedule:
		return s.executeSchedule(ctx, chatID, action)

	case ActionUpdateTitle:
		return s.executeUpdateTitle(ctx, action)

	case ActionUpdateTime, ActionUpdateDate:
		return s.executeUpdateWhen(ctx, action)

	case ActionCancel:
		return s.executeCancel(ctx, chatID, action)

	default:
		return Result{Text: s.llm.Complete(ctx, action.Text)}
	}
}

func (s *Service) executeSchedule(ctx context.Context, chatID int64, action Action) Result {
	draft := action.Draft
	if draft.Date == "" || draft.Time == "" {
		return Result{Text: "I couldn't find a clear date or time. Could you specify them?"}
	}

	event, err := s.calendar.CreateEvent(ctx, draft.Title, draft.Date, draft.Time, draft.Attendees)
	if err != nil {
		logrus.Errorf("Failed to create event: %v", err)
		return Result{Text: "Failed to create the calendar event. Please try again."}
	}

	s.mu.Lock()
	s.lastEvent[chatID] = event.ID
	s.mu.Unlock()

	return Result{
		Text:  scheduleConfirmation(draft, event),
		Event: event,
	}
}

func (s *Service) executeUpdateTitle(ctx context.Context, action Action) Result {
	if action.NewTitle == "" {
		return Result{Text: "Please tell me the new title for the meeting."}
	}

	event, err := s.calendar.UpdateTitle(ctx, action.EventID, action.NewTitle)
	if err != nil {
		if errors.Is(err, calendar.ErrNoUpcomingEvent) {
			return Result{Text: "No upcoming meetings found to update."}
		}
		logrus.Errorf("Failed to update event title: %v", err)
		return Result{Text: "Failed to update the meeting title. Please try again."}
	}

	return Result{Text: fmt.Sprintf("Meeting title changed to *%s*!", event.Title)}
}

func (s *Service) executeUpdateWhen(ctx context.Context, action Action) Result {
	if action.NewDate == "" && action.NewTime == "" {
		return Result{Text: "I couldn't find a new date or time in that. Could you specify it?"}
	}

	event, err := s.calendar.UpdateWhen(ctx, action.EventID, action.NewDate, action.NewTime)
	if err != nil {
		if errors.Is(err, calendar.ErrNoUpcomingEvent) {
			return Result{Text: "Couldn't find an upcoming meeting to update."}
		}
		logrus.Errorf("Failed to reschedule event: %v", err)
		return Result{Text: "Failed to reschedule the meeting. Please try again."}
	}

	return Result{Text: fmt.Sprintf("Meeting *%s* moved to %s at %s!",
		event.Title, event.Start.Format("2006-01-02"), event.Start.Format("15:04"))}
}

func (s *Service) executeCancel(ctx context.Context, chatID int64, action Action) Result {
	if err := s.calendar.DeleteEvent(ctx, action.EventID); err != nil {
		logrus.Errorf("Failed to delete event: %v", err)
		return Result{Text: "Failed to cancel the meeting. Please try again."}
	}

	if action.RefMsgID != 0 {
		s.refs.Delete(action.RefMsgID)
	}

	s.mu.Lock()
	if s.lastEvent[chatID] == action.EventID {
		delete(s.lastEvent, chatID)
	}
	s.mu.Unlock()

	return Result{Text: "The meeting has been cancelled."}
}

// RecordConfirmation is called by the transport after the confirmation
// message has been sent, once its message id is known.
func (s *Service) RecordConfirmation(chatID int64, messageID int, eventID, text string) {
	s.refs.Put(messageID, eventref.Entry{
		EventID:          eventID,
		ConfirmationText: text,
	})

	s.mu.Lock()
	s.lastEvent[chatID] = eventID
	s.mu.Unlock()

	logrus.Infof("Stored event mapping: message_id=%d -> event_id=%s", messageID, eventID)
}

func (s *Service) lastEventFor(chatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEvent[chatID]
}

func scheduleConfirmation(draft *parser.Draft, event *calendar.Event) string {
	var b strings.Builder

	b.WriteString("✅ *Meeting Scheduled!*\n\n")
	fmt.Fprintf(&b, "🗓 *%s*\n", event.Title)
	fmt.Fprintf(&b, "📅 %s at %s\n", draft.Date, draft.Time)
	if len(draft.Attendees) > 0 {
		fmt.Fprintf(&b, "👥 Participants: %s\n", strings.Join(draft.Attendees, ", "))
	}
	if event.Link != "" {
		fmt.Fprintf(&b, "🔗 [View in Calendar](%s)\n", event.Link)
	}
	if draft.Adjusted {
		b.WriteString("\n⚠️ The time you mentioned had already passed, so I scheduled it for the next day.\n")
	}
	b.WriteString("\n✨ *You can reply to this message and say:*\n")
	b.WriteString("• Change title to _Daily Sync_\n")
	b.WriteString("• Reschedule meeting to _3pm tomorrow_\n")
	b.WriteString("• Move meeting to _Friday_\n")
	b.WriteString("• Cancel this meeting")

	return b.String()
}
