package config_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/masky/pkg/config"
)

type billingConfig struct {
	ReturnURL   string        `env:"CFGTEST_RETURN_URL" envDefault:"https://masky.ai"`
	MaxBody     int64         `env:"CFGTEST_MAX_BODY" envDefault:"65536"`
	RequireAuth bool          `env:"CFGTEST_REQUIRE_AUTH" envDefault:"true"`
	Timeout     time.Duration `env:"CFGTEST_TIMEOUT" envDefault:"30s"`
}

type cachedConfig struct {
	Origin string `env:"CFGTEST_ORIGIN" envDefault:"https://masky.ai"`
}

type signingConfig struct {
	Key string `env:"CFGTEST_SIGNING_KEY,required"`
}

type reloadConfig struct {
	Tier string `env:"CFGTEST_TIER" envDefault:"free"`
}

func TestLoad(t *testing.T) {
	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("CFGTEST_RETURN_URL", "https://staging.masky.ai")
		t.Setenv("CFGTEST_TIMEOUT", "5s")
		unsetForTest(t, "CFGTEST_MAX_BODY", "CFGTEST_REQUIRE_AUTH")

		var cfg billingConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "https://staging.masky.ai", cfg.ReturnURL)
		assert.Equal(t, int64(65536), cfg.MaxBody)
		assert.True(t, cfg.RequireAuth)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("missing required value", func(t *testing.T) {
		unsetForTest(t, "CFGTEST_SIGNING_KEY")

		var cfg signingConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil target", func(t *testing.T) {
		var cfg *billingConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})
}

func TestLoad_CachedPerType(t *testing.T) {
	t.Setenv("CFGTEST_ORIGIN", "https://a.masky.ai")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CFGTEST_ORIGIN", "https://b.masky.ai")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var again cachedConfig
			assert.NoError(t, config.Load(&again))
			assert.Equal(t, "https://a.masky.ai", again.Origin)
		}()
	}
	wg.Wait()
}

func TestForceReloadConfig_UpdatesCache(t *testing.T) {
	t.Setenv("CFGTEST_TIER", "pro")

	var cfg reloadConfig
	require.NoError(t, config.Load(&cfg))
	require.Equal(t, "pro", cfg.Tier)

	t.Setenv("CFGTEST_TIER", "elite")
	require.NoError(t, config.ForceReloadConfig(&cfg))
	assert.Equal(t, "elite", cfg.Tier)

	var cached reloadConfig
	require.NoError(t, config.Load(&cached))
	assert.Equal(t, "elite", cached.Tier)

	assert.ErrorIs(t, config.ForceReloadConfig[reloadConfig](nil), config.ErrNilPointer)
}
