// Package testutil provides reusable test helpers: a running stub backend
// on an in-memory database, and record fixtures.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aanand-mishra/school-admin/internal/config"
	"github.com/aanand-mishra/school-admin/internal/http/handlers/record"
	"github.com/aanand-mishra/school-admin/internal/http/middleware"
	"github.com/aanand-mishra/school-admin/internal/storage/sqlite"
	"github.com/aanand-mishra/school-admin/internal/types"
)

// StubAPI is a stub backend serving the full route table.
type StubAPI struct {
	Server  *httptest.Server
	Storage *sqlite.SQLite
	Metrics *middleware.Metrics

	calls atomic.Int64
}

// NewStubAPI starts a stub backend that is closed when the test ends.
func NewStubAPI(t testing.TB) *StubAPI {
	t.Helper()

	store, err := sqlite.New(&config.StubConfig{StoragePath: ":memory:"})
	if err != nil {
		t.Fatalf("open stub storage: %v", err)
	}

	api := &StubAPI{
		Storage: store,
		Metrics: middleware.NewMetrics(prometheus.NewRegistry()),
	}

	mux := http.NewServeMux()
	record.Register(mux, store, api.Metrics)

	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.calls.Add(1)
		mux.ServeHTTP(w, r)
	}))

	t.Cleanup(func() {
		api.Server.Close()
		_ = store.Close()
	})
	return api
}

// URL is the origin to configure clients with.
func (a *StubAPI) URL() string {
	return a.Server.URL
}

// Calls returns how many requests the stub has served.
func (a *StubAPI) Calls() int64 {
	return a.calls.Load()
}

// Seed inserts records of kind directly into storage and returns them
// with their ids.
func (a *StubAPI) Seed(t testing.TB, kind types.Kind, records ...types.Record) []types.Record {
	t.Helper()

	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		created, err := a.Storage.Create(kind, r)
		if err != nil {
			t.Fatalf("seed %s: %v", kind, err)
		}
		out = append(out, created)
	}
	return out
}

// Ada and Bob are valid records without ids.
var (
	Ada = types.Record{FullName: "Ada", Class: "5", Gender: "Female", Age: 12}
	Bob = types.Record{FullName: "Bob", Class: "2", Gender: "Male", Age: 7}
)
