package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/courtside/courtside/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"COURTSIDE_CONFIG",
		"COURTSIDE_ADDR",
		"COURTSIDE_STORE_DSN",
		"COURTSIDE_CACHE_CAPACITY",
		"COURTSIDE_CACHE_TTL_SECONDS",
		"COURTSIDE_QUEUE_SIZE",
		"COURTSIDE_DISPATCHER_COUNT",
		"COURTSIDE_HIT_RATE_WARNING",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "courtside-*.yaml")
	if err != nil {
		t.Fatalf("create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp config: %v", err)
	}
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CacheCapacity, convey.ShouldEqual, 1_000)
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("COURTSIDE_ADDR", ":9090")
			_ = os.Setenv("COURTSIDE_CACHE_CAPACITY", "50")
			_ = os.Setenv("COURTSIDE_QUEUE_SIZE", "128")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.CacheCapacity, convey.ShouldEqual, 50)
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.DispatcherCount, convey.ShouldEqual, 2) // untouched default
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
addr: ":7070"
store_dsn: "/tmp/courtside-test.db"
cache_capacity: 25
dispatcher_count: 4
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("COURTSIDE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StoreDSN, convey.ShouldEqual, "/tmp/courtside-test.db")
				convey.So(cfg.CacheCapacity, convey.ShouldEqual, 25)
				convey.So(cfg.DispatcherCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When env vars override the YAML file", func() {
			tmpFile := createTempConfigFile(t, "addr: \":7070\"\n")
			_ = os.Setenv("COURTSIDE_CONFIG", tmpFile)
			_ = os.Setenv("COURTSIDE_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
		})

		convey.Convey("When the config is invalid", func() {
			_ = os.Setenv("COURTSIDE_ADDR", "")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should report an invalid config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv("COURTSIDE_CONFIG", "/nonexistent/courtside.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})
}
