package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/Vuyani-Magibisela/GSCMS-sub009/internal/adapters/repository"
	service "github.com/Vuyani-Magibisela/GSCMS-sub009/internal/app"
	"github.com/Vuyani-Magibisela/GSCMS-sub009/pkg/logger"
)

const rubricsYAML = `
rubrics:
  - id: robotics
    name: Robotics
    criteria:
      - id: design
        name: Design
        max_points: 50
      - id: build
        name: Build
        max_points: 50
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestRun(t *testing.T) {
	convey.Convey("Given a configuration for an in-memory database", t, func() {
		setEnv(t, map[string]string{
			"GSCMS_ADDR":         "127.0.0.1:0",
			"GSCMS_DB_PATH":      ":memory:",
			"GSCMS_RUBRICS_FILE": writeFile(t, "rubrics.yaml", rubricsYAML),
			"GSCMS_LOG_LEVEL":    "error",
		})

		convey.Convey("When the process runs until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			err := run(ctx)

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the rubrics file is missing", func() {
			t.Setenv("GSCMS_RUBRICS_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

			err := run(context.Background())

			convey.Convey("Then startup fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			t.Setenv("GSCMS_LOG_FORMAT", "xml")

			err := run(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestSeedRubrics(t *testing.T) {
	convey.Convey("Given a service over an empty store", t, func() {
		ctx := context.Background()
		_ = logger.Init()
		db, err := repository.Open(ctx, ":memory:")
		convey.So(err, convey.ShouldBeNil)
		defer db.Close()
		convey.So(repository.Migrate(db), convey.ShouldBeNil)
		svc := service.New(repository.NewSQLStore(db))

		convey.Convey("When seeding from a rubrics file", func() {
			err := seedRubrics(ctx, svc, writeFile(t, "rubrics.yaml", rubricsYAML))

			convey.Convey("Then the rubrics are stored", func() {
				convey.So(err, convey.ShouldBeNil)
				r, err := svc.Rubric(ctx, "robotics")
				convey.So(err, convey.ShouldBeNil)
				convey.So(r.MaxTotal(), convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When no file is configured", func() {
			convey.So(seedRubrics(ctx, svc, ""), convey.ShouldBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		_ = logger.Init()
		svc := service.New(nil)

		convey.Convey("Then they update metrics without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then they stop with their context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})
	})
}
