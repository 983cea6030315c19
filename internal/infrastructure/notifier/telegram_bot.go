package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"currency_flip/internal/domain/entity"
	"currency_flip/internal/domain/service/market"
	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
	"currency_flip/pkg/metrics"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// Notification найденная цепочка, о которой нужно сообщить в чат.
type Notification struct {
	League     string
	Conversion entity.Conversion
}

type TelegramBot struct {
	bot    sender
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return NewWithSender(bot, chatID), nil
}

func NewWithSender(bot sender, chatID int64) *TelegramBot {
	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}
}

// Run отправляет уведомления из канала, пока он открыт.
func (b *TelegramBot) Run(ctx context.Context, notifications <-chan Notification) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n, ok := <-notifications:
			if !ok {
				return nil
			}
			if err := b.SendConversion(ctx, n); err != nil {
				logger(ctx).Error("failed to send conversion",
					slog.String(logx.FieldLeague, n.League),
					slog.String(logx.FieldCurrency, n.Conversion.From),
					logx.Error(err),
				)
			}
		}
	}
}

func (b *TelegramBot) SendConversion(ctx context.Context, n Notification) error {
	c := n.Conversion

	var sb strings.Builder
	fmt.Fprintf(&sb,
		"💱 <b>%s</b> · %s\n\n"+
			"Вложить: <b>%d</b>\n"+
			"Получить: <b>%d</b>\n"+
			"Прибыль: <b>%+d</b>\n\n",
		html.EscapeString(c.From),
		html.EscapeString(n.League),
		c.Starting,
		c.Ending,
		c.Winnings,
	)

	for _, t := range c.Transactions {
		fmt.Fprintf(&sb, "<code>%s</code>\n", html.EscapeString(market.FormatTransaction(t)))
	}

	msg := tu.Message(
		tu.ID(b.chatID),
		sb.String(),
	).WithParseMode(telego.ModeHTML)

	sent, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	metrics.NotificationsSentTotal.Inc()

	logger(ctx).Debug("conversion sent", slog.Int(logx.FieldMessageID, sent.MessageID))

	return nil
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}
