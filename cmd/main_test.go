package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/mergington/activities/internal/adapters/repository"
	app "github.com/mergington/activities/internal/app"
	"github.com/mergington/activities/internal/config"
	"github.com/mergington/activities/internal/domain/catalog"
	"github.com/mergington/activities/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the handler built from a default config", t, func() {
		ctx := context.Background()
		cfg := config.New()
		svc := app.New()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		convey.Reset(func() { _ = svc.Stop(ctx) })
		h := newHandler(ctx, cfg, svc)

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
			return w
		}

		convey.Convey("Then every route group should be mounted", func() {
			root := get("/")
			convey.So(root.Code, convey.ShouldEqual, http.StatusTemporaryRedirect)
			convey.So(root.Header().Get("Location"), convey.ShouldEqual, "/static/index.html")

			convey.So(get("/static/index.html").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/activities").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/activities/changes").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestLoadSeed(t *testing.T) {
	convey.Convey("Given no seed file", t, func() {
		activities, err := loadSeed(config.New())

		convey.Convey("Then the built-in catalog should be used", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(activities, convey.ShouldResemble, catalog.Default())
		})
	})

	convey.Convey("Given a seed file", t, func() {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		convey.So(os.WriteFile(path, []byte(`
activities:
  - name: Robotics Club
    description: Build robots
    schedule: Saturdays
    max_participants: 4
`), 0o600), convey.ShouldBeNil)
		cfg := config.New()
		cfg.SeedFile = path

		activities, err := loadSeed(cfg)

		convey.Convey("Then its activities should be used", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(activities, convey.ShouldHaveLength, 1)
			convey.So(activities[0].Name, convey.ShouldEqual, "Robotics Club")
		})
	})

	convey.Convey("Given a missing seed file", t, func() {
		cfg := config.New()
		cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := loadSeed(cfg)

		convey.Convey("Then it should fail with a catalog error", func() {
			convey.So(errors.Is(err, catalog.ErrReadCatalog), convey.ShouldBeTrue)
		})
	})
}

func TestNewStore(t *testing.T) {
	convey.Convey("Given the memory store config", t, func() {
		store, err := newStore(context.Background(), config.New())

		convey.Convey("Then a memory store should be built", func() {
			convey.So(err, convey.ShouldBeNil)
			_, ok := store.(*repository.MemStore)
			convey.So(ok, convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given the redis store config", t, func() {
		mr, err := miniredis.Run()
		convey.So(err, convey.ShouldBeNil)
		convey.Reset(mr.Close)

		cfg := config.New()
		cfg.Store = config.StoreRedis
		cfg.RedisAddr = mr.Addr()
		cfg.RedisKeyPrefix = "test:"

		convey.Convey("When redis is reachable", func() {
			store, err := newStore(context.Background(), cfg)

			convey.Convey("Then a redis store should be built", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*repository.RedisStore)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(store.Seed(context.Background(), catalog.Default()), convey.ShouldBeNil)
				convey.So(mr.Exists("test:catalog"), convey.ShouldBeTrue)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When redis is unreachable", func() {
			cfg.RedisAddr = "127.0.0.1:1"
			_, err := newStore(context.Background(), cfg)

			convey.Convey("Then it should fail fast", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a config listening on an ephemeral port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg) }()

			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then run should shut down cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Error("run did not return after cancellation")
				}
			})
		})

		convey.Convey("When the seed file is invalid", func() {
			cfg.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

			convey.Convey("Then run should fail before serving", func() {
				convey.So(run(context.Background(), cfg), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metric updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then they should return once the context ends", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			startSystemMetricsUpdater(ctx)
			startServiceMetricsUpdater(ctx, app.New())
		})
	})
}
