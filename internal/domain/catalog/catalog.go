// Package catalog holds the set of tradeable items and their per-backend
// identifiers. The dataset is injectable: tests build catalogues from
// synthetic items, the service loads the embedded default or a file.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

//go:embed items.json
var defaultItems []byte

var ErrUnsupportedItem = errors.New("unsupported item")

// Items nobody trades through the exchange in bulk.
var blacklist = []string{ //nolint:gochecknoglobals
	"Scroll of Wisdom",
	"Portal Scroll",
	"Armourer's Scrap",
	"Blacksmith's Whetstone",
}

type Item struct {
	Name          string            `json:"name" validate:"required"`
	IDs           map[string]string `json:"ids" validate:"required,min=1"`
	Tier          int               `json:"tier" validate:"gte=0"`
	Currency      bool              `json:"currency"`
	BasicCurrency bool              `json:"basicCurrency"`
	BulkTarget    bool              `json:"bulkTarget"`
	Category      string            `json:"category"`
}

func (i Item) SupportedBy(backend string) bool {
	_, ok := i.IDs[backend]
	return ok
}

// Pair направление обмена: платим Have, получаем Want.
type Pair struct {
	Have string
	Want string
}

type Catalog struct {
	items map[string]Item
	names []string
}

func New(items []Item) (*Catalog, error) {
	c := &Catalog{
		items: make(map[string]Item, len(items)),
		names: make([]string, 0, len(items)),
	}

	for _, item := range items {
		if err := validate.Struct(item); err != nil {
			return nil, fmt.Errorf("validate item %q: %w", item.Name, err)
		}

		if slices.Contains(blacklist, item.Name) {
			continue
		}

		if _, ok := c.items[item.Name]; !ok {
			c.names = append(c.names, item.Name)
		}

		c.items[item.Name] = item
	}

	return c, nil
}

func Read(r io.Reader) (*Catalog, error) {
	var items []Item

	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	return New(items)
}

func Load(path string) (*Catalog, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer fh.Close()

	return Read(fh)
}

func Default() (*Catalog, error) {
	return Read(bytes.NewReader(defaultItems))
}

func (c *Catalog) Len() int {
	return len(c.names)
}

func (c *Catalog) Item(name string) (Item, bool) {
	item, ok := c.items[name]
	return item, ok
}

// MapItem возвращает идентификатор предмета в конкретном бэкенде.
func (c *Catalog) MapItem(name, backend string) (string, error) {
	item, ok := c.items[name]
	if !ok {
		return "", fmt.Errorf("%s backend does not support item %s: %w", backend, name, ErrUnsupportedItem)
	}

	id, ok := item.IDs[backend]
	if !ok {
		return "", fmt.Errorf("%s backend does not support item %s: %w", backend, name, ErrUnsupportedItem)
	}

	return id, nil
}

// Tier чем меньше, тем ценнее предмет; 0 означает «не задан».
func (c *Catalog) Tier(name string) (int, bool) {
	item, ok := c.items[name]
	if !ok || item.Tier == 0 {
		return 0, false
	}
	return item.Tier, true
}

func (c *Catalog) Currencies(backend string) []string {
	return c.filter(backend, func(i Item) bool { return i.Currency })
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.items[name]
	return ok
}

// Pairs строит все упорядоченные пары валют, поддерживаемых бэкендом.
// С fullBulk добавляются пары «цель для балка ↔ балковый предмет».
func (c *Catalog) Pairs(backend string, fullBulk bool) []Pair {
	currencies := c.Currencies(backend)

	pairs := make([]Pair, 0, len(currencies)*len(currencies))
	for _, have := range currencies {
		for _, want := range currencies {
			if have != want {
				pairs = append(pairs, Pair{Have: have, Want: want})
			}
		}
	}

	if !fullBulk {
		return pairs
	}

	targets := c.filter(backend, func(i Item) bool { return i.BulkTarget })
	bulk := c.filter(backend, func(i Item) bool { return !i.Currency })

	for _, target := range targets {
		for _, item := range bulk {
			pairs = append(pairs, Pair{Have: target, Want: item})
		}
	}

	for _, item := range bulk {
		for _, target := range targets {
			pairs = append(pairs, Pair{Have: item, Want: target})
		}
	}

	return pairs
}

// Supports проверяет, что бэкенд знает оба предмета каждой пары.
func (c *Catalog) Supports(pairs []Pair, backend string) error {
	for _, p := range pairs {
		if _, err := c.MapItem(p.Have, backend); err != nil {
			return err
		}

		if _, err := c.MapItem(p.Want, backend); err != nil {
			return err
		}
	}

	return nil
}

func (c *Catalog) filter(backend string, keep func(Item) bool) []string {
	var names []string

	for _, name := range c.names {
		item := c.items[name]
		if item.SupportedBy(backend) && keep(item) {
			names = append(names, name)
		}
	}

	return names
}
