package policy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"currency_flip/internal/domain"
	"currency_flip/internal/domain/policy"
	"currency_flip/pkg/errcodes"
)

func TestParseDefaults(t *testing.T) {
	rq := require.New(t)

	cfg, err := policy.Parse([]byte(`{"version": 1, "trading": {"Chaos Orb": {}}, "assets": {}}`))
	rq.NoError(err)

	item := cfg.Trading["Chaos Orb"]
	rq.NotNil(item)
	rq.Equal(0, item.MinimumStock)
	rq.Equal(policy.IntInfinity, item.MaximumStock)
	rq.NotNil(item.SellFor)
	rq.Empty(cfg.Assets)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "broken json", input: `{"version": 1,`},
		{name: "zero version", input: `{"version": 0, "assets": {}}`},
		{name: "negative asset", input: `{"version": 1, "assets": {"Chaos Orb": -1}}`},
		{name: "negative minimum stock", input: `{"version": 1, "trading": {"Chaos Orb": {"minimum_stock": -5}}}`},
		{
			name:  "maximum below minimum",
			input: `{"version": 1, "trading": {"Chaos Orb": {"sell_for": {"Exalted Orb": {"minimum_stock": 10, "maximum_stock": 5}}}}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			cfg, err := policy.Parse([]byte(tc.input))
			rq.Nil(cfg)
			rq.Error(err)
			rq.True(domain.HasCode(err, errcodes.InvalidUserConfig))
		})
	}
}

func TestStockBoundaries(t *testing.T) {
	cfg, err := policy.Parse([]byte(`{
		"version": 1,
		"trading": {
			"Exalted Orb": {"minimum_stock": 2, "maximum_stock": 100},
			"Chaos Orb": {
				"minimum_stock": 50,
				"sell_for": {
					"Exalted Orb": {"minimum_stock": 10},
					"Orb of Fusing": null
				}
			}
		}
	}`))
	require.NoError(t, err)

	testCases := []struct {
		name        string
		sell, buy   string
		expectedMin int
		expectedMax int
	}{
		{name: "not configured", sell: "Orb of Fusing", buy: "Orb of Alchemy", expectedMin: 0, expectedMax: policy.IntInfinity},
		{name: "buy item settings", sell: "Orb of Fusing", buy: "Exalted Orb", expectedMin: 2, expectedMax: 100},
		{name: "pair settings override buy item", sell: "Chaos Orb", buy: "Exalted Orb", expectedMin: 10, expectedMax: policy.IntInfinity},
		{name: "sell item settings do not apply", sell: "Chaos Orb", buy: "Orb of Alchemy", expectedMin: 0, expectedMax: policy.IntInfinity},
		{name: "null pair is ignored", sell: "Chaos Orb", buy: "Orb of Fusing", expectedMin: 0, expectedMax: policy.IntInfinity},
		{name: "buying configured item", sell: "Orb of Fusing", buy: "Chaos Orb", expectedMin: 50, expectedMax: policy.IntInfinity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			minimum, maximum := cfg.StockBoundaries(tc.sell, tc.buy)
			rq.Equal(tc.expectedMin, minimum)
			rq.Equal(tc.expectedMax, maximum)
		})
	}
}

func TestMaxTradeVolume(t *testing.T) {
	rq := require.New(t)

	cfg, err := policy.Parse([]byte(`{"version": 1, "assets": {"Chaos Orb": 150, "Exalted Orb": 0}}`))
	rq.NoError(err)

	rq.Equal(150, cfg.MaxTradeVolume("Chaos Orb"))
	rq.Equal(0, cfg.MaxTradeVolume("Exalted Orb"))
	rq.Equal(20*60, cfg.MaxTradeVolume("Orb of Fusing"))
	rq.Equal(60, cfg.MaxTradeVolume("Headhunter"))

	cfg.WithStackSizes(policy.StackSizes{"Chaos Orb": 1, "Orb of Fusing": 0})
	rq.Equal(60, cfg.MaxTradeVolume("Chaos Orb"))
	rq.Equal(60, cfg.MaxTradeVolume("Orb of Fusing"))

	rq.Equal(10*60, policy.Default().MaxTradeVolume("Chaos Orb"))
}

func TestHasAccount(t *testing.T) {
	rq := require.New(t)

	cfg := policy.Default()
	rq.ErrorContains(cfg.HasAccount(), "missing accountName in config file")

	cfg.AccountName = "flipper"
	rq.ErrorContains(cfg.HasAccount(), "missing POESESSID in config file")

	cfg.PoeSessionID = "secret"
	rq.NoError(cfg.HasAccount())
}

func TestLoad(t *testing.T) {
	rq := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	rq.NoError(os.WriteFile(path, []byte(`{"version": 2, "accountName": "trader", "POESESSID": "abc", "assets": {"Chaos Orb": 100}}`), 0o600))

	cfg, err := policy.Load(path)
	rq.NoError(err)
	rq.Equal(2, cfg.Version)
	rq.Equal(100, cfg.MaxTradeVolume("Chaos Orb"))
	rq.NoError(cfg.HasAccount())
}

func TestLoadMissing(t *testing.T) {
	rq := require.New(t)

	// В каталоге пакета нет config/config.default.json, поэтому запасного файла тоже нет.
	cfg, err := policy.Load(filepath.Join(t.TempDir(), "missing.json"))
	rq.Nil(cfg)
	rq.Error(err)
	rq.True(domain.HasCode(err, errcodes.InvalidUserConfig))
}
