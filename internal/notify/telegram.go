package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// sender is the one tgbotapi call the notifier makes; narrowed for tests.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier turns booking lifecycle events into Telegram messages
// for users who registered a chat id. Delivery is best-effort: failures are
// logged and the triggering request is never affected.
type TelegramNotifier struct {
	bot    sender
	users  domain.UserStore
	logger *zerolog.Logger
}

func NewTelegramNotifier(token string, users domain.UserStore, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, users: users, logger: logger}, nil
}

// Register subscribes the notifier to booking events on the bus.
func (n *TelegramNotifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handle)
	bus.Subscribe(events.EventBookingApproved, n.handle)
	bus.Subscribe(events.EventBookingRejected, n.handle)
}

func (n *TelegramNotifier) handle(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("malformed booking event payload")
		return err
	}

	switch event.Type {
	case events.EventBookingCreated:
		// The owner decides; the requester already knows.
		n.notifyUser(payload.ItemOwnerID, fmt.Sprintf(
			"New booking request #%d for your item: %s — %s",
			payload.BookingID,
			payload.Start.Format("2006-01-02 15:04"),
			payload.End.Format("2006-01-02 15:04"),
		))
	case events.EventBookingApproved:
		n.notifyUser(payload.RequesterID, fmt.Sprintf("Your booking #%d was approved", payload.BookingID))
	case events.EventBookingRejected:
		n.notifyUser(payload.RequesterID, fmt.Sprintf("Your booking #%d was rejected", payload.BookingID))
	}
	return nil
}

func (n *TelegramNotifier) notifyUser(userID int64, text string) {
	user, err := n.users.GetUser(context.Background(), userID)
	if err != nil {
		n.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to load user for notification")
		return
	}
	if user == nil || user.TelegramChatID == 0 {
		return
	}

	msg := tgbotapi.NewMessage(user.TelegramChatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", user.TelegramChatID).Msg("failed to send telegram notification")
	}
}
