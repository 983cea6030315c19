package handler

import (
	"context"
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"currency_flip/internal/domain/service/market"
	"currency_flip/internal/transport/bot/view"
	"currency_flip/pkg/logx"
)

const flipLimit = 3

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	report, scannedAt := h.scanner.LastReport()

	return h.sendHTML(ctx, msg.Chat.ID, view.FormatStatus(view.Status{
		Running:    h.scanner.IsRunning(),
		League:     h.scanner.League(),
		Currencies: h.scanner.Currencies(),
		Interval:   h.scanner.Interval(),
		LastReport: report,
		LastScanAt: scannedAt,
	}))
}

// OnFlip разовый поиск по валюте в текущей лиге.
// Использование: /flip Chaos Orb
func (h *Handler) OnFlip(ctx *th.Context, msg telego.Message) error {
	currency := commandArgument(msg.Text)
	if currency == "" {
		currency = market.AllCurrencies
	}

	if currency != market.AllCurrencies && !h.catalog.Has(currency) {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.UnknownCurrency, html.EscapeString(currency)))
	}

	league := h.scanner.League()

	if err := h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.ScanStarted, html.EscapeString(currency), html.EscapeString(league))); err != nil {
		return err
	}

	report, err := h.svc.Scan(ctx, market.ScanRequest{
		League:   league,
		Currency: currency,
		Limit:    flipLimit,
	})
	if err != nil {
		logger(ctx).Error("flip scan failed", logx.Error(err))
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf(view.ScanFailed, err))
	}

	return h.sendHTML(ctx, msg.Chat.ID, view.FormatReport(report))
}

func (h *Handler) OnStartScan(ctx *th.Context, msg telego.Message) error {
	if h.scanner.IsRunning() {
		return h.send(ctx, msg.Chat.ID, view.ScannerRunning)
	}

	// Контекст апдейта живёт только до конца обработки команды.
	if err := h.scanner.Start(context.WithoutCancel(ctx)); err != nil {
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf(view.ScannerStartFailed, err))
	}

	return h.send(ctx, msg.Chat.ID, view.ScannerStarted)
}

func (h *Handler) OnStopScan(ctx *th.Context, msg telego.Message) error {
	if !h.scanner.IsRunning() {
		return h.send(ctx, msg.Chat.ID, view.ScannerNotRunning)
	}

	h.scanner.Stop()

	return h.send(ctx, msg.Chat.ID, view.ScannerStopped)
}

// OnWatch добавляет валюту в периодическое сканирование.
// Использование: /watch Exalted Orb
func (h *Handler) OnWatch(ctx *th.Context, msg telego.Message) error {
	currency := commandArgument(msg.Text)
	if currency == "" {
		return h.sendHTML(ctx, msg.Chat.ID, view.WatchUsage)
	}

	if !h.catalog.Has(currency) {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.UnknownCurrency, html.EscapeString(currency)))
	}

	if h.scanner.HasCurrency(currency) {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.WatchExists, html.EscapeString(currency)))
	}

	h.scanner.AddCurrency(currency)

	return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.WatchAdded, html.EscapeString(currency)))
}

func (h *Handler) OnUnwatch(ctx *th.Context, msg telego.Message) error {
	currency := commandArgument(msg.Text)
	if currency == "" {
		return h.sendHTML(ctx, msg.Chat.ID, view.UnwatchUsage)
	}

	if !h.scanner.HasCurrency(currency) {
		return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.WatchMissing, html.EscapeString(currency)))
	}

	h.scanner.RemoveCurrency(currency)

	return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(view.WatchRemoved, html.EscapeString(currency)))
}

func (h *Handler) OnWatchList(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.FormatWatchList(h.scanner.Currencies()))
}

func (h *Handler) OnClearWatch(ctx *th.Context, msg telego.Message) error {
	h.scanner.ClearCurrencies()

	return h.sendHTML(ctx, msg.Chat.ID, view.WatchCleared)
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: telego.ModeHTML,
	})
	return err
}

func (h *Handler) send(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	return err
}
