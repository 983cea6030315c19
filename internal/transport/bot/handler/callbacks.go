package handler

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"currency_flip/internal/transport/bot/view"
	"currency_flip/pkg/contextx"
	"currency_flip/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const leagueCallbackPrefix = "league:"

// OnLeague переключает лигу: с аргументом сразу, без него показывает выбор.
// Использование: /league Standard
func (h *Handler) OnLeague(ctx *th.Context, msg telego.Message) error {
	if league := commandArgument(msg.Text); league != "" {
		h.scanner.SetLeague(league)
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.LeagueSet, html.EscapeString(league)))
	}

	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: msg.Chat.ID},
		Text:        fmt.Sprintf(view.LeagueChoose, html.EscapeString(h.scanner.League())),
		ParseMode:   telego.ModeHTML,
		ReplyMarkup: leagueKeyboard(h.svc.Leagues(), h.scanner.League()),
	})
	return err
}

func (h *Handler) OnLeagueCallback(ctx *th.Context, query telego.CallbackQuery) error {
	league := strings.TrimPrefix(query.Data, leagueCallbackPrefix)

	if !slices.Contains(h.svc.Leagues(), league) {
		return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText("❌ Неизвестная лига").WithShowAlert())
	}

	h.scanner.SetLeague(league)

	if query.Message != nil {
		_, err := ctx.Bot().EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      tu.ID(query.Message.GetChat().ID),
			MessageID:   query.Message.GetMessageID(),
			Text:        fmt.Sprintf(view.LeagueChoose, html.EscapeString(league)),
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: leagueKeyboard(h.svc.Leagues(), league),
		})
		// Telegram отвечает ошибкой, если текст не изменился.
		if err != nil {
			logger(ctx).Debug("EditMessageText", logx.Error(err))
		}
	}

	return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
}

func leagueKeyboard(leagues []string, current string) *telego.InlineKeyboardMarkup {
	rows := make([][]telego.InlineKeyboardButton, 0, len(leagues))

	for _, league := range leagues {
		label := league
		if league == current {
			label = "✅ " + league
		}

		rows = append(rows, tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithCallbackData(leagueCallbackPrefix+league),
		))
	}

	return tu.InlineKeyboard(rows...)
}
