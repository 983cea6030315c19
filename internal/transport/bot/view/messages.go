package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"currency_flip/internal/domain/service/market"
)

// maxMessageLen ограничение Telegram на длину сообщения с запасом под разметку.
const maxMessageLen = 3800

const StartMessage = `👋 <b>Currency flip</b>

Ищу прибыльные цепочки обмена валют на торговой площадке.

/flip <code>валюта</code> — разовый поиск (по умолчанию все)
/status — состояние сканера
/startscan, /stopscan — периодическое сканирование
/league — выбрать лигу
/watch, /unwatch, /watchlist — валюты для сканирования`

const (
	ScanStarted        = "⏳ Сканирую %s в %s..."
	ScanFailed         = "❌ Ошибка сканирования: %v"
	ScannerRunning     = "Сканер уже запущен!"
	ScannerNotRunning  = "Сканер не запущен!"
	ScannerStarted     = "🟢 Сканер запущен!"
	ScannerStopped     = "🔴 Сканер остановлен!"
	ScannerStartFailed = "Ошибка запуска сканера: %v"
	LeagueChoose       = "🏆 Текущая лига: <b>%s</b>\nВыберите лигу:"
	LeagueSet          = "✅ Лига: <b>%s</b>"
	UnknownCurrency    = "❌ Неизвестная валюта: <code>%s</code>"
	WatchUsage         = "❌ Использование: /watch <code>валюта</code>"
	UnwatchUsage       = "❌ Использование: /unwatch <code>валюта</code>"
	WatchAdded         = "✅ <b>%s</b> добавлена в сканирование"
	WatchExists        = "⚠️ <b>%s</b> уже в списке"
	WatchRemoved       = "✅ <b>%s</b> удалена из сканирования"
	WatchMissing       = "⚠️ <b>%s</b> нет в списке"
	WatchCleared       = "✅ Список очищен\n\n💡 Теперь сканируются все валюты"
	WatchListEmpty     = "📋 <b>Список сканирования пуст</b>\n\nСканируются все валюты.\n\nДобавить: /watch <code>валюта</code>"
)

type Status struct {
	Running    bool
	League     string
	Currencies []string
	Interval   time.Duration
	LastReport *market.ScanReport
	LastScanAt time.Time
}

func FormatStatus(s Status) string {
	scanner := "🔴 остановлен"
	if s.Running {
		scanner = "🟢 работает"
	}

	watched := "все валюты"
	if len(s.Currencies) > 0 {
		watched = html.EscapeString(strings.Join(s.Currencies, ", "))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Статус</b>\n\n"+
		"🔍 <b>Сканер:</b> %s\n"+
		"🏆 <b>Лига:</b> %s\n"+
		"📦 <b>Валюты:</b> %s\n"+
		"⏱ <b>Интервал:</b> %s\n",
		scanner,
		html.EscapeString(s.League),
		watched,
		s.Interval,
	)

	if s.LastReport != nil {
		fmt.Fprintf(&sb, "\n🕑 <b>Последний скан:</b> %s\n"+
			"📈 <b>Предложений:</b> %d\n"+
			"💱 <b>Цепочек:</b> %d\n",
			s.LastScanAt.Format(time.DateTime),
			s.LastReport.Offers,
			s.LastReport.Results.Count(),
		)
	}

	return sb.String()
}

// FormatReport цепочки отчёта по валютам в блоках <pre>.
func FormatReport(report market.ScanReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "💱 <b>%s</b> · %s\n", html.EscapeString(report.Currency), html.EscapeString(report.League))

	for _, asset := range report.Results.Assets() {
		for _, conversion := range report.Results[asset] {
			block := "<pre>" + html.EscapeString(market.FormatConversion(conversion)) + "</pre>\n"
			if sb.Len()+len(block) > maxMessageLen {
				sb.WriteString("…")
				return sb.String()
			}
			sb.WriteString(block)
		}
	}

	for _, missing := range report.Missing {
		fmt.Fprintf(&sb, "\n⚠️ Could not find any profitable conversions for %s in %s",
			html.EscapeString(missing), html.EscapeString(report.League))
	}

	return sb.String()
}

func FormatWatchList(currencies []string) string {
	if len(currencies) == 0 {
		return WatchListEmpty
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Сканируемые валюты (%d):</b>\n\n", len(currencies))

	for i, c := range currencies {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, html.EscapeString(c))
	}

	return sb.String()
}
