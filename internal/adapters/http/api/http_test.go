package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	api "github.com/okian/lodestar/internal/adapters/http/api"
	app "github.com/okian/lodestar/internal/app"
	"github.com/okian/lodestar/internal/domain/model"
	signal "github.com/okian/lodestar/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDeps implements api.Dependencies with scripted behavior.
type fakeDeps struct {
	lastBatch model.Batch
	summary   model.Summary
	ingestErr error
	pingErr   error
}

func (f *fakeDeps) Ingest(_ context.Context, batch model.Batch) (model.Summary, error) {
	f.lastBatch = batch
	if f.ingestErr != nil {
		return model.Summary{}, f.ingestErr
	}
	return f.summary, nil
}

func (f *fakeDeps) Ping(context.Context) error { return f.pingErr }

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *fakeDeps, opts ...api.ServerOption) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, deps, opts...).Register(context.Background(), mux)
	return mux
}

func postTelemetry(mux *http.ServeMux, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/telemetry", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

const validBody = `{
	"vesselId": "V100",
	"timestampUTC": "2026-08-27T10:15:00Z",
	"signals": {"engineTemp": 42.5, "bilgeAlarm": 1, "label": "abc", "flag": true}
}`

func TestPostTelemetry(t *testing.T) {
	Convey("Given the telemetry route with auth disabled", t, func() {
		deps := &fakeDeps{summary: model.Summary{
			VesselID:     "V100",
			Accepted:     2,
			Quarantined:  2,
			ValidationMs: 3,
			IngestionMs:  1,
			TotalMs:      5,
		}}
		mux := newTestMux(deps)

		Convey("When posting a valid batch", func() {
			rec := postTelemetry(mux, validBody, "")

			Convey("Then the response should carry counts and timings", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					OK           bool   `json:"ok"`
					VesselID     string `json:"vesselId"`
					ValidSignals int    `json:"validSignals"`
					ValidationMs int64  `json:"validationMs"`
					IngestionMs  int64  `json:"ingestionMs"`
					TotalMs      int64  `json:"totalMs"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.OK, ShouldBeTrue)
				So(resp.VesselID, ShouldEqual, "V100")
				So(resp.ValidSignals, ShouldEqual, 2)
				So(resp.TotalMs, ShouldEqual, 5)
			})

			Convey("And the decoded batch should preserve wire shapes", func() {
				readings := deps.lastBatch.Readings
				So(readings, ShouldHaveLength, 4)
				So(readings["engineTemp"].Shape, ShouldEqual, signal.ShapeFloat)
				So(readings["engineTemp"].Num, ShouldEqual, 42.5)
				So(readings["bilgeAlarm"].Shape, ShouldEqual, signal.ShapeInteger)
				So(readings["label"].Shape, ShouldEqual, signal.ShapeString)
				So(readings["flag"].Shape, ShouldEqual, signal.ShapeBool)
			})

			Convey("And a request ID should be assigned", func() {
				So(rec.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
			})
		})

		Convey("When posting a malformed JSON body", func() {
			rec := postTelemetry(mux, `{"vesselId": `, "")

			Convey("Then it should be rejected with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting without a vesselId", func() {
			rec := postTelemetry(mux, `{"timestampUTC": "2026-08-27T10:15:00Z", "signals": {}}`, "")

			Convey("Then it should be rejected with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the pipeline rejects the timestamp", func() {
			deps.ingestErr = app.ErrInvalidTimestamp
			rec := postTelemetry(mux, validBody, "")

			Convey("Then it should map to 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the pipeline rejects the vessel", func() {
			deps.ingestErr = app.ErrUnknownVessel
			rec := postTelemetry(mux, validBody, "")

			Convey("Then it should map to 403", func() {
				So(rec.Code, ShouldEqual, http.StatusForbidden)
			})
		})

		Convey("When the pipeline hits a storage failure", func() {
			deps.ingestErr = errors.New("insert raw signal: disk I/O error")
			rec := postTelemetry(mux, validBody, "")

			Convey("Then it should map to a generic 500", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(rec.Body.String(), ShouldNotContainSubstring, "disk I/O")
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/telemetry", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestBearerAuthGate(t *testing.T) {
	Convey("Given the telemetry route guarded by a token", t, func() {
		deps := &fakeDeps{summary: model.Summary{VesselID: "V100"}}
		mux := newTestMux(deps, api.WithAPIToken("sekrit"))

		Convey("When posting without a token", func() {
			rec := postTelemetry(mux, validBody, "")

			Convey("Then it should be rejected with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When posting with a wrong token", func() {
			rec := postTelemetry(mux, validBody, "wrong")

			Convey("Then it should be rejected with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When posting with the right token", func() {
			rec := postTelemetry(mux, validBody, "sekrit")

			Convey("Then the pipeline should run", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("Then the health probe should stay public", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health probe", t, func() {
		deps := &fakeDeps{}
		mux := newTestMux(deps)

		Convey("When storage answers pings", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should report ok", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"db":"up"`)
			})
		})

		Convey("When storage is unreachable", func() {
			deps.pingErr = errors.New("database is locked")
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should report degraded with 503", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(rec.Body.String(), ShouldContainSubstring, `"db":"down"`)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		mux := newTestMux(&fakeDeps{})

		Convey("When requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should return the stats snapshot", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"started":true`)
			})
		})
	})
}

func TestMetricsEndpoint(t *testing.T) {
	Convey("Given the metrics endpoint", t, func() {
		mux := newTestMux(&fakeDeps{})

		Convey("When scraped", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it should serve the Prometheus exposition", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
