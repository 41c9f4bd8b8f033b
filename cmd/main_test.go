package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/railshot/internal/adapters/repository"
	"github.com/okian/railshot/internal/config"
	"github.com/okian/railshot/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.New(context.Background())
	cfg.WorkerCount = 2
	cfg.QueueSize = 16
	cfg.StoragePath = filepath.Join(t.TempDir(), "railshot.db")
	return cfg
}

func serve(a *application, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, req)
	return w
}

func TestApplication(t *testing.T) {
	convey.Convey("Given a wired application", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		a, err := newApplication(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When a shot is analyzed over HTTP", func() {
			w := serve(a, http.MethodPost, "/analyze", `{"rails":2,"white_ball":2.5,"aim":7,"cue":2.5,"path":3}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(a.engine.Memory().Len(), convey.ShouldEqual, 1)

			convey.Convey("Then shutdown persists the state", func() {
				convey.So(a.shutdown(ctx), convey.ShouldBeNil)

				store, err := repository.OpenSQLite(cfg.StoragePath)
				convey.So(err, convey.ShouldBeNil)
				defer store.Close()
				_, err = store.Get(ctx, repository.KeyMemory)
				convey.So(err, convey.ShouldBeNil)
				_, err = store.Get(ctx, repository.KeyModel)
				convey.So(err, convey.ShouldBeNil)

				convey.Convey("And a restarted application restores it", func() {
					b, err := newApplication(ctx, cfg, logger.Get())
					convey.So(err, convey.ShouldBeNil)
					defer func() { _ = b.shutdown(ctx) }()
					convey.So(b.engine.Memory().Len(), convey.ShouldEqual, 1)
				})
			})
		})

		convey.Convey("When a task is dispatched over HTTP", func() {
			defer func() { _ = a.shutdown(ctx) }()
			w := serve(a, http.MethodPost, "/dispatch", `{"kind":"calculateAngles","shot":{"rails":1,"white_ball":3,"aim":5,"cue":2}}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"success":true`)
		})

		convey.Convey("When stats and docs are requested", func() {
			defer func() { _ = a.shutdown(ctx) }()

			w := serve(a, http.MethodGet, "/stats", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			var st processStats
			convey.So(json.Unmarshal(w.Body.Bytes(), &st), convey.ShouldBeNil)
			convey.So(st.Dispatch.Workers, convey.ShouldEqual, 2)
			convey.So(st.Dispatch.QueueCapacity, convey.ShouldEqual, 16)
			convey.So(st.Engine.MemoryCapacity, convey.ShouldEqual, 1000)

			w = serve(a, http.MethodGet, "/openapi.yaml", "")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})
	})

	convey.Convey("Given a missing knowledge base", t, func() {
		cfg := testConfig(t)
		cfg.KnowledgeBasePath = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := newApplication(context.Background(), cfg, logger.Get())
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		a, err := newApplication(context.Background(), testConfig(t), logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = a.shutdown(context.Background()) }()

		convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		convey.So(func() { updateServiceMetrics(a) }, convey.ShouldNotPanic)
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		convey.So(func() { startServiceMetricsUpdater(ctx, a) }, convey.ShouldNotPanic)
	})
}
