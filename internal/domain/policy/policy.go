package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"currency_flip/internal/domain"
	"currency_flip/pkg/errcodes"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

// IntInfinity «бесконечный» объём для ненастроенных границ.
const IntInfinity = 1_000_000

const (
	DefaultConfigPath        = "config/config.json"
	DefaultConfigDefaultPath = "config/config.default.json"
)

// StockBounds допустимый сток контрагента для покупаемого предмета.
type StockBounds struct {
	MinimumStock int `json:"minimum_stock" validate:"gte=0"`
	MaximumStock int `json:"maximum_stock" validate:"gtefield=MinimumStock"`
}

func (b *StockBounds) UnmarshalJSON(data []byte) error {
	type raw StockBounds

	v := raw{MinimumStock: 0, MaximumStock: IntInfinity}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*b = StockBounds(v)

	return nil
}

// TradingItem настройки торговли одним предметом.
// SellFor уточняет границы для конкретной пары «продаю → покупаю».
type TradingItem struct {
	MinimumStock int                     `json:"minimum_stock" validate:"gte=0"`
	MaximumStock int                     `json:"maximum_stock" validate:"gtefield=MinimumStock"`
	SellFor      map[string]*StockBounds `json:"sell_for" validate:"dive"`
}

func (t *TradingItem) UnmarshalJSON(data []byte) error {
	type raw TradingItem

	v := raw{MinimumStock: 0, MaximumStock: IntInfinity}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	if v.SellFor == nil {
		v.SellFor = make(map[string]*StockBounds)
	}

	*t = TradingItem(v)

	return nil
}

// UserConfig пользовательская политика торговли.
type UserConfig struct {
	Version      int                     `json:"version" validate:"gte=1"`
	AccountName  string                  `json:"accountName"`
	PoeSessionID string                  `json:"POESESSID"`
	Assets       map[string]int          `json:"assets" validate:"dive,gte=0"`
	Trading      map[string]*TradingItem `json:"trading" validate:"dive"`

	stackSizes StackSizes
}

// Default возвращает разрешающую политику без ограничений по активам.
func Default() *UserConfig {
	return &UserConfig{
		Version:    1,
		Assets:     make(map[string]int),
		Trading:    make(map[string]*TradingItem),
		stackSizes: DefaultStackSizes(),
	}
}

// Parse разбирает и валидирует JSON конфигурации.
func Parse(data []byte) (*UserConfig, error) {
	cfg := Default()

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, domain.WrapError(err, errcodes.InvalidUserConfig, "failed to decode user config")
	}

	if cfg.Assets == nil {
		cfg.Assets = make(map[string]int)
	}

	if cfg.Trading == nil {
		cfg.Trading = make(map[string]*TradingItem)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, domain.WrapError(err, errcodes.InvalidUserConfig, "invalid user config")
	}

	return cfg, nil
}

// Load читает конфигурацию из path; без path берётся config/config.json,
// а если его нет, то config/config.default.json.
func Load(path string) (*UserConfig, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		path = DefaultConfigDefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InvalidUserConfig, "the specified config file path does not exist")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("policy.Parse %s: %w", path, err)
	}

	return cfg, nil
}

func (c *UserConfig) WithStackSizes(sizes StackSizes) *UserConfig {
	c.stackSizes = sizes
	return c
}

func (c *UserConfig) StackSizes() StackSizes {
	if c.stackSizes == nil {
		return DefaultStackSizes()
	}
	return c.stackSizes
}

// MaxTradeVolume сколько item можно отдать за одну сделку:
// не больше одного инвентаря и не больше, чем есть у пользователя.
func (c *UserConfig) MaxTradeVolume(item string) int {
	tradeable := c.StackSizes().MaxVolume(item)

	owned, ok := c.Assets[item]
	if !ok {
		owned = IntInfinity
	}

	return min(tradeable, owned)
}

// StockBoundaries возвращает границы стока контрагента при продаже sell за buy.
// Общие настройки trading[buy] перекрываются trading[sell].sell_for[buy].
func (c *UserConfig) StockBoundaries(sell, buy string) (int, int) {
	minimum, maximum := 0, IntInfinity

	if item := c.Trading[buy]; item != nil {
		minimum, maximum = item.MinimumStock, item.MaximumStock
	}

	if item := c.Trading[sell]; item != nil {
		if specific := item.SellFor[buy]; specific != nil {
			minimum, maximum = specific.MinimumStock, specific.MaximumStock
		}
	}

	return minimum, maximum
}

// HasAccount проверяет, что заданы данные для синхронизации тайников.
func (c *UserConfig) HasAccount() error {
	if c.AccountName == "" {
		return domain.NewError(errcodes.InvalidUserConfig, "missing accountName in config file")
	}

	if c.PoeSessionID == "" {
		return domain.NewError(errcodes.InvalidUserConfig, "missing POESESSID in config file")
	}

	return nil
}

func (c *UserConfig) String() string {
	return fmt.Sprintf("UserConfig(v%d, assets=%d, trading=%d)", c.Version, len(c.Assets), len(c.Trading))
}
