package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"currency_flip/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnFlip, th.CommandEqual("flip"))
	adminGroup.HandleMessage(h.OnStartScan, th.CommandEqual("startscan"))
	adminGroup.HandleMessage(h.OnStopScan, th.CommandEqual("stopscan"))
	adminGroup.HandleMessage(h.OnLeague, th.CommandEqual("league"))
	adminGroup.HandleMessage(h.OnWatch, th.CommandEqual("watch"))
	adminGroup.HandleMessage(h.OnUnwatch, th.CommandEqual("unwatch"))
	adminGroup.HandleMessage(h.OnWatchList, th.CommandEqual("watchlist"))
	adminGroup.HandleMessage(h.OnClearWatch, th.CommandEqual("clearwatch"))

	cbGroup := bh.Group(th.AnyCallbackQuery())
	cbGroup.Use(middleware.AdminOnly(adminID))

	cbGroup.HandleCallbackQuery(h.OnLeagueCallback, th.CallbackDataPrefix(leagueCallbackPrefix))
}
