// Package alert relays critical SOS requests to an out-of-band Telegram
// channel watched by on-call moderators. The relay sits behind a circuit
// breaker so a dead Telegram API cannot slow down request creation.
package alert

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"

	"wanderlink/backend/internal/logger"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/texts"
)

type TelegramRelay struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	cb     *gobreaker.CircuitBreaker
}

// NewTelegramRelay connects the bot and configures the breaker: five
// consecutive failures open the circuit for a minute.
func NewTelegramRelay(token string, chatID int64) (*TelegramRelay, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("alert: telegram connect: %w", err)
	}
	st := gobreaker.Settings{
		Name:    "telegram-alerts",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warnw("alert relay breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &TelegramRelay{
		bot:    bot,
		chatID: chatID,
		cb:     gobreaker.NewCircuitBreaker(st),
	}, nil
}

// Alert posts a critical request to the moderators' channel.
func (r *TelegramRelay) Alert(_ context.Context, req models.SOSRequest) error {
	body := texts.SOSAlertBody(req.UserPseudo, req.Category, req.Message)
	if req.Location != nil && req.Location.Address != "" {
		body += "\n📍 " + req.Location.Address
	}
	_, err := r.cb.Execute(func() (interface{}, error) {
		return r.bot.Send(tgbotapi.NewMessage(r.chatID, body))
	})
	return err
}
