package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"meetingbot/internal/dispatcher"
	"meetingbot/internal/parser"
	"meetingbot/pkg/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const helpText = `👋 Hi! I'm your meeting assistant.
I can schedule and manage meetings, and chat about anything else.

Try these:
• /schedule meeting tomorrow at 10am with test@gmail.com
• Change meeting title to Daily Sync
• Change meeting time to 10pm
• Tell me something about Go`

type Handler struct {
	bot        *tgbotapi.BotAPI
	dispatcher *dispatcher.Service
	parser     *parser.Service
	cfg        *config.Config
}

func NewHandler(cfg *config.Config, dispatchSvc *dispatcher.Service, parserSvc *parser.Service) (*Handler, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	logrus.Infof("Telegram bot started: %s", bot.Self.UserName)

	return &Handler{
		bot:        bot,
		dispatcher: dispatchSvc,
		parser:     parserSvc,
		cfg:        cfg,
	}, nil
}

func (h *Handler) SetupWebhook() error {
	webhookURL := fmt.Sprintf("https://%s:%s/webhook", h.cfg.ServerHost, h.cfg.ServerPort)

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}

	if _, err := h.bot.Request(webhookConfig); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	return nil
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := h.bot.HandleUpdate(r)
	if err != nil {
		logrus.Errorf("Failed to parse update: %v", err)
		return
	}

	h.handleUpdate(*update)
}

// StartPolling consumes updates over long polling, one goroutine per update.
// Used in local/dev mode instead of the webhook.
func (h *Handler) StartPolling() {
	if _, err := h.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		logrus.Warnf("Failed to delete webhook before polling: %v", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := h.bot.GetUpdatesChan(updateConfig)

	go func() {
		for update := range updates {
			go h.handleUpdate(update)
		}
	}()

	logrus.Info("Telegram bot polling started")
}

func (h *Handler) handleUpdate(update tgbotapi.Update) {
	ctx := context.Background()

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	switch update.Message.Command() {
	case "start", "help":
		h.sendPlain(update.Message.Chat.ID, helpText)
		return
	case "schedule":
		h.handleScheduleCommand(ctx, update)
		return
	}

	msg := dispatcher.Inbound{
		ChatID:    update.Message.Chat.ID,
		MessageID: update.Message.MessageID,
		Text:      update.Message.Text,
	}
	if update.Message.ReplyToMessage != nil {
		replyTo := update.Message.ReplyToMessage.MessageID
		msg.ReplyTo = &replyTo
	}

	result := h.dispatcher.Dispatch(ctx, msg)
	h.deliver(ctx, update.Message.Chat.ID, result)
}

// handleScheduleCommand treats everything after /schedule as a meeting
// description and goes straight to the schedule action.
func (h *Handler) handleScheduleCommand(ctx context.Context, update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	args := strings.TrimSpace(update.Message.CommandArguments())
	if args == "" {
		h.sendPlain(chatID, "🗓 Please describe your meeting.\n\nExample:\n/schedule meeting tomorrow at 10am about project updates")
		return
	}

	draft := h.parser.Parse(ctx, args, time.Now())
	action := dispatcher.Action{Kind: dispatcher.ActionSchedule, Draft: draft}

	result := h.dispatcher.Execute(ctx, chatID, action)
	h.deliver(ctx, chatID, result)
}

// deliver sends the dispatch result and, for schedule confirmations, records
// the sent message id so later replies can target the created event.
func (h *Handler) deliver(ctx context.Context, chatID int64, result dispatcher.Result) {
	sentID, err := h.SendSmart(chatID, result.Text)
	if err != nil {
		logrus.Errorf("Failed to send reply to chat %d: %v", chatID, err)
		return
	}

	if result.Event != nil {
		h.dispatcher.RecordConfirmation(chatID, sentID, result.Event.ID, result.Text)
	}
}

func (h *Handler) SendMessage(chatID int64, text string) error {
	_, err := h.SendSmart(chatID, text)
	return err
}

// SendSmart sends text within Telegram's message size limits: oversized text
// is chunked on line boundaries, and anything that would take more than
// three chunks is sent as a short preview plus a file attachment. Returns the
// id of the first message sent.
func (h *Handler) SendSmart(chatID int64, text string) (int, error) {
	parts, asFile := SplitMessage(text)

	if asFile {
		preview := Preview(text) + "\n\n(Full response attached 👇)"
		sent, err := h.send(chatID, preview)
		if err != nil {
			return 0, err
		}

		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  "reply.txt",
			Bytes: []byte(text),
		})
		if _, err := h.bot.Send(doc); err != nil {
			return 0, fmt.Errorf("failed to send document: %w", err)
		}
		return sent.MessageID, nil
	}

	firstID := 0
	for i, part := range parts {
		sent, err := h.send(chatID, part)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			firstID = sent.MessageID
		}
	}
	return firstID, nil
}

func (h *Handler) send(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	sent, err := h.bot.Send(msg)
	if err == nil {
		return sent, nil
	}

	// Markdown from the model is not always balanced; retry without it
	// rather than losing the reply.
	msg.ParseMode = ""
	sent, err = h.bot.Send(msg)
	if err != nil {
		return tgbotapi.Message{}, fmt.Errorf("failed to send message: %w", err)
	}
	return sent, nil
}

func (h *Handler) sendPlain(chatID int64, text string) {
	if err := h.SendMessage(chatID, text); err != nil {
		logrus.Errorf("Failed to send message to chat %d: %v", chatID, err)
	}
}
