package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/config"
)

var configEnvVars = []string{
	"GSCMS_CONFIG", "GSCMS_ADDR", "GSCMS_DB_PATH", "GSCMS_LOG_LEVEL", "GSCMS_LOG_FORMAT",
	"GSCMS_CONSISTENCY_THRESHOLD_PCT", "GSCMS_ADVISORY_QUEUE_SIZE", "GSCMS_ADVISORY_WORKER_COUNT",
	"GSCMS_ADVISORY_DEDUPE_SIZE", "GSCMS_MAX_LEADERBOARD_LIMIT", "GSCMS_AUTOSAVE_RATE_PER_SEC",
	"GSCMS_AUTOSAVE_BURST", "GSCMS_RUBRICS_FILE",
}

func clearConfigEnvVars() {
	for _, v := range configEnvVars {
		_ = os.Unsetenv(v)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults come back", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "gscms.db")
				convey.So(cfg.ConsistencyThresholdPct, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GSCMS_ADDR", ":8080")
			_ = os.Setenv("GSCMS_DB_PATH", ":memory:")
			_ = os.Setenv("GSCMS_CONSISTENCY_THRESHOLD_PCT", "12.5")
			_ = os.Setenv("GSCMS_ADVISORY_WORKER_COUNT", "4")
			_ = os.Setenv("GSCMS_LOG_FORMAT", "json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env overrides defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, ":memory:")
				convey.So(cfg.ConsistencyThresholdPct, convey.ShouldEqual, 12.5)
				convey.So(cfg.AdvisoryWorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with a YAML file and env", func() {
			path := writeConfigFile(t, `
addr: ":9090"
consistency_threshold_pct: 20
max_leaderboard_limit: 25
rubrics_file: /etc/gscms/rubrics.yaml
`)
			_ = os.Setenv("GSCMS_CONFIG", path)
			_ = os.Setenv("GSCMS_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.ConsistencyThresholdPct, convey.ShouldEqual, 20)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 25)
				convey.So(cfg.RubricsFile, convey.ShouldEqual, "/etc/gscms/rubrics.yaml")
				convey.So(cfg.AdvisoryQueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("GSCMS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("GSCMS_CONSISTENCY_THRESHOLD_PCT", "-1")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the log format is unknown", func() {
			_ = os.Setenv("GSCMS_LOG_FORMAT", "xml")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the address is empty", func() {
			path := writeConfigFile(t, `addr: ""`)
			_ = os.Setenv("GSCMS_CONFIG", path)

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
