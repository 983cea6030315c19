// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import "time"

// Offer Котировка контрагента
type Offer struct {
	League         string  `json:"league" validate:"required"`
	Have           string  `json:"have" validate:"required"`
	Want           string  `json:"want" validate:"required"`
	ContactIGN     string  `json:"contact_ign" validate:"required"`
	ConversionRate float64 `json:"conversion_rate"`
	Stock          int     `json:"stock"`
}

// Transaction Сделка цепочки с рассчитанными объёмами
type Transaction struct {
	Offer

	Paid     int    `json:"paid"`
	Received int    `json:"received"`
	Message  string `json:"message"`
}

// Conversion Прибыльная цепочка сделок
type Conversion struct {
	From         string        `json:"from"`
	To           string        `json:"to"`
	Starting     int           `json:"starting"`
	Ending       int           `json:"ending"`
	Winnings     int           `json:"winnings"`
	Transactions []Transaction `json:"transactions"`
}

type Leagues struct {
	Leagues []string `json:"leagues"`
}

// Conversions Цепочки по валютам
type Conversions struct {
	League  string                  `json:"league,omitempty"`
	Results map[string][]Conversion `json:"results"`
}

type PathfindRequest struct {
	Offers    []Offer `json:"offers" validate:"required,min=1,dive"`
	MaxLength int     `json:"max_length" validate:"gte=0,lte=5"`
}

type ScanRequest struct {
	League   string `json:"league" validate:"required"`
	Currency string `json:"currency"`
	FullBulk bool   `json:"fullbulk"`
	NoFilter bool   `json:"nofilter"`
	Limit    int    `json:"limit" validate:"gte=0"`
}

// ScanTask Поставленная в очередь задача сканирования
type ScanTask struct {
	ID    string `json:"id"`
	Queue string `json:"queue"`
}

type Snapshot struct {
	ID          string                  `json:"id"`
	League      string                  `json:"league"`
	Currencies  []string                `json:"currencies"`
	Offers      int                     `json:"offers"`
	Conversions int                     `json:"conversions"`
	Results     map[string][]Conversion `json:"results,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

type Snapshots struct {
	Snapshots []Snapshot `json:"snapshots"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	// SupportID trace id запроса для поиска в логах
	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string
