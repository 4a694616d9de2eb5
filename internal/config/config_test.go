package config_test

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ConsistencyThresholdPct, convey.ShouldEqual, 15)
			convey.So(cfg.AdvisoryQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.RubricsFile, convey.ShouldBeEmpty)
		})
	})
}
