package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/lodestar/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults and a token", func() {
			clearConfigEnvVars()
			_ = os.Setenv("LODESTAR_API_TOKEN", "secret-token")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "lodestar.db")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.APIToken, convey.ShouldEqual, "secret-token")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 1<<20)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LODESTAR_ADDR", ":9090")
			_ = os.Setenv("LODESTAR_DB_PATH", "/var/lib/lodestar/telemetry.db")
			_ = os.Setenv("LODESTAR_LOG_LEVEL", "debug")
			_ = os.Setenv("LODESTAR_API_TOKEN", "env-token")
			_ = os.Setenv("LODESTAR_MAX_BODY_BYTES", "2048")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/lodestar/telemetry.db")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.APIToken, convey.ShouldEqual, "env-token")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 2048)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":7070"
db_path: "file.db"
log_level: "warn"
api_token: "file-token"
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LODESTAR_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DBPath, convey.ShouldEqual, "file.db")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.APIToken, convey.ShouldEqual, "file-token")
			})
		})

		convey.Convey("When env vars and a YAML file disagree", func() {
			yamlContent := `
addr: ":7070"
api_token: "file-token"
`
			tmpFile := createTempConfigFile(t, yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LODESTAR_CONFIG", tmpFile)
			_ = os.Setenv("LODESTAR_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.APIToken, convey.ShouldEqual, "file-token")
			})
		})

		convey.Convey("When the API token is missing", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the address is blanked out", func() {
			clearConfigEnvVars()
			_ = os.Setenv("LODESTAR_API_TOKEN", "secret-token")
			_ = os.Setenv("LODESTAR_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"LODESTAR_CONFIG",
		"LODESTAR_ADDR",
		"LODESTAR_DB_PATH",
		"LODESTAR_LOG_LEVEL",
		"LODESTAR_API_TOKEN",
		"LODESTAR_MAX_BODY_BYTES",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "lodestar-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp config: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close temp config: %v", err)
	}
	return f.Name()
}
