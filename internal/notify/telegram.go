package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SignalLab/internal/trading/optimizer"
)

// maxMessageLen is the Telegram limit for one text message.
const maxMessageLen = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends batch summaries to one chat.
type Telegram struct {
	bot    sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegram authenticates the bot token against the Bot API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	t := newTelegram(bot, chatID)
	t.logger.Info().Str("bot", bot.Self.UserName).Msg("Authorized on account")
	return t, nil
}

func newTelegram(bot sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram").Logger(),
	}
}

func (t *Telegram) NotifyBatch(ctx context.Context, timeframe string, results []optimizer.SymbolResult) error {
	for _, part := range split(FormatBatch(timeframe, results), maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, part)); err != nil {
			t.logger.Error().Err(err).Int64("chat_id", t.chatID).Msg("Failed to send message")
			return fmt.Errorf("send telegram message: %w", err)
		}
	}
	return nil
}

// split cuts text into chunks of at most limit bytes, preferring line breaks.
func split(text string, limit int) []string {
	var parts []string
	for len(text) > limit {
		cut := limit
		for i := limit; i > 0; i-- {
			if text[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	return append(parts, text)
}
