package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aryodp/edgegate/internal/auth"
	"github.com/aryodp/edgegate/internal/cache"
	"github.com/aryodp/edgegate/internal/httpserver"
	"github.com/aryodp/edgegate/internal/httpserver/deps"
	"github.com/aryodp/edgegate/internal/logger"
	"github.com/aryodp/edgegate/internal/probe"
	"github.com/aryodp/edgegate/internal/query"
	"github.com/aryodp/edgegate/internal/scheduler"
	"github.com/aryodp/edgegate/internal/snapshot"
	"github.com/aryodp/edgegate/internal/upstream"
)

// upstreamPayload is the sheet API response the service consumes,
// deliberately including a string port and a row without a domain.
const upstreamPayload = `{
	"data": [
		{"server_name": "SRV-02", "domain_name": "zulu.example.id", "backend_folder_name": "zulu-api", "backend_url": "http://10.0.0.2", "port": 8080, "is_terpusat": "", "apk_name": "", "status_backup": "OK"},
		{"server_name": "SRV-01", "domain_name": "alpha.example.id", "backend_folder_name": "alpha-api", "backend_url": "http://10.0.0.1", "port": "9090", "is_terpusat": "YA", "apk_name": "Alpha", "status_backup": "OK"},
		{"server_name": "SRV-01", "domain_name": "mike.example.id", "backend_folder_name": "mike-api", "backend_url": "http://10.0.0.1", "port": 7070, "is_terpusat": "YA", "apk_name": "Mike", "status_backup": "OK"},
		{"server_name": "SRV-03", "domain_name": "", "backend_folder_name": "ghost", "backend_url": "http://10.0.0.3", "port": 1, "is_terpusat": "", "apk_name": "", "status_backup": ""}
	]
}`

func newTestStack(t *testing.T, snapshotPath string) (http.Handler, *scheduler.Refresher, chan struct{}) {
	t.Helper()

	sheet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamPayload))
	}))
	t.Cleanup(sheet.Close)

	usersPath := filepath.Join(t.TempDir(), "users.yaml")
	if err := os.WriteFile(usersPath, []byte("users:\n  - username: ops\n    password: hunter2\n"), 0o600); err != nil {
		t.Fatalf("write users file: %v", err)
	}
	users, err := auth.LoadStore(usersPath)
	if err != nil {
		t.Fatalf("LoadStore() error = %v", err)
	}

	log := logger.New("error", false)
	c := cache.New()
	store := snapshot.NewFileStore(snapshotPath)
	reload := make(chan struct{}, 1)

	fetcher := upstream.NewFetcher(sheet.URL, 5*time.Second)
	refresher := scheduler.NewRefresher(fetcher, c, store, log, 59, reload)

	d := deps.Deps{
		Logger:            log,
		StartTime:         time.Now(),
		Cache:             c,
		Query:             query.New(c),
		Prober:            probe.NewClient(2 * time.Second),
		Users:             users,
		ReloadTrigger:     reload,
		CheckBurst:        100,
		CheckRefillPerMin: 100,
	}

	return httpserver.NewRouter(log, d), refresher, reload
}

func doJSON(t *testing.T, h http.Handler, method, target string, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if len(rec.Body.Bytes()) > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s: response is not JSON: %v (%s)", method, target, err, rec.Body.String())
		}
	}
	return rec, decoded
}

// TestServeAfterRefresh drives the full path: fetch from the sheet API,
// swap the cache, persist the snapshot, then serve sorted paginated data.
func TestServeAfterRefresh(t *testing.T) {
	snapPath := filepath.Join(t.TempDir(), "data-cache.json")
	router, refresher, _ := newTestStack(t, snapPath)

	if err := refresher.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce() error = %v", err)
	}

	rec, body := doJSON(t, router, http.MethodGet, "/get-data-client?page=1&limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /get-data-client = %v, want 200 (%s)", rec.Code, rec.Body.String())
	}
	if body["status"] != true {
		t.Errorf("status = %v, want true", body["status"])
	}

	data := body["data"].(map[string]interface{})
	if data["total"] != float64(3) {
		t.Errorf("total = %v, want 3 (ghost row without domain must be dropped)", data["total"])
	}
	if data["totalPages"] != float64(2) {
		t.Errorf("totalPages = %v, want 2", data["totalPages"])
	}

	items := data["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("len(items) = %v, want 2", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["server_location"] != "SRV-01" || first["domain_name"] != "alpha.example.id" {
		t.Errorf("first item = %v, want SRV-01/alpha.example.id", first)
	}
	if got := first["backend_url"]; got != "http://10.0.0.1:9090/api/v1/system/get" {
		t.Errorf("backend_url = %v, want composed URL with string-coerced port", got)
	}

	// Snapshot must have been written as a side effect of the refresh.
	if _, err := os.Stat(snapPath); err != nil {
		t.Errorf("snapshot file not written: %v", err)
	}
}

// TestSnapshotHydration simulates a restart: a second stack pointed at
// the same snapshot file serves data without ever touching upstream.
func TestSnapshotHydration(t *testing.T) {
	snapPath := filepath.Join(t.TempDir(), "data-cache.json")
	_, refresher, _ := newTestStack(t, snapPath)
	if err := refresher.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("RefreshOnce() error = %v", err)
	}

	store := snapshot.NewFileStore(snapPath)
	ds, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	log := logger.New("error", false)
	c := cache.New()
	c.Replace(ds)

	router := httpserver.NewRouter(log, deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Cache:         c,
		Query:         query.New(c),
		Prober:        probe.NewClient(time.Second),
		Users:         &auth.Store{},
		ReloadTrigger: make(chan struct{}, 1),
	})

	rec, body := doJSON(t, router, http.MethodGet, "/get-data-client", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /get-data-client after hydration = %v, want 200", rec.Code)
	}
	data := body["data"].(map[string]interface{})
	if data["total"] != float64(3) {
		t.Errorf("total after hydration = %v, want 3", data["total"])
	}
}

// TestManualReload checks the /reload trigger causes a fresh upstream
// fetch beyond the cold-start one.
func TestManualReload(t *testing.T) {
	var fetches atomic.Int32
	sheet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamPayload))
	}))
	defer sheet.Close()

	log := logger.New("error", false)
	c := cache.New()
	reload := make(chan struct{}, 1)
	refresher := scheduler.NewRefresher(upstream.NewFetcher(sheet.URL, 5*time.Second), c, nil, log, 59, reload)

	router := httpserver.NewRouter(log, deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Cache:         c,
		Query:         query.New(c),
		Prober:        probe.NewClient(time.Second),
		Users:         &auth.Store{},
		ReloadTrigger: reload,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := refresher.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer refresher.Stop()

	if got := fetches.Load(); got != 1 {
		t.Fatalf("cold-start fetches = %v, want 1", got)
	}

	rec, _ := doJSON(t, router, http.MethodPost, "/reload", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST /reload = %v, want 202", rec.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fetches.Load() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("manual reload never reached upstream")
}

func TestRoutingSurface(t *testing.T) {
	snapPath := filepath.Join(t.TempDir(), "data-cache.json")
	router, _, _ := newTestStack(t, snapPath)

	scenarios := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		validate   func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]interface{})
	}{
		{
			name:       "unknown route is JSON 404",
			method:     http.MethodGet,
			target:     "/nope",
			wantStatus: http.StatusNotFound,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]interface{}) {
				if body["error"] != "Not Found" {
					t.Errorf("error = %v, want Not Found", body["error"])
				}
			},
		},
		{
			name:       "wrong method is JSON 405",
			method:     http.MethodDelete,
			target:     "/login",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "check without url",
			method:     http.MethodGet,
			target:     "/check",
			wantStatus: http.StatusBadRequest,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]interface{}) {
				if body["error"] != "url parameter is required" {
					t.Errorf("error = %v, want url parameter is required", body["error"])
				}
			},
		},
		{
			name:       "data before any refresh",
			method:     http.MethodGet,
			target:     "/get-data-client",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "login accepted",
			method:     http.MethodPost,
			target:     "/login",
			body:       `{"username":"ops","password":"hunter2"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "login rejected",
			method:     http.MethodPost,
			target:     "/login",
			body:       `{"username":"ops","password":"nope"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "preflight",
			method:     http.MethodOptions,
			target:     "/login",
			wantStatus: http.StatusNoContent,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]interface{}) {
				if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
					t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
				}
			},
		},
		{
			name:       "healthz",
			method:     http.MethodGet,
			target:     "/healthz",
			wantStatus: http.StatusOK,
			validate: func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]interface{}) {
				if body["status"] != "ok" {
					t.Errorf("status = %v, want ok", body["status"])
				}
				if body["last_refresh"] != "never" {
					t.Errorf("last_refresh = %v, want never before any refresh", body["last_refresh"])
				}
			},
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			rec, body := doJSON(t, router, sc.method, sc.target, sc.body)
			if rec.Code != sc.wantStatus {
				t.Fatalf("%s %s = %v, want %v (%s)", sc.method, sc.target, rec.Code, sc.wantStatus, rec.Body.String())
			}
			if sc.validate != nil {
				sc.validate(t, rec, body)
			}
		})
	}
}

func TestCheckRateLimited(t *testing.T) {
	log := logger.New("error", false)
	c := cache.New()
	router := httpserver.NewRouter(log, deps.Deps{
		Logger:            log,
		StartTime:         time.Now(),
		Cache:             c,
		Query:             query.New(c),
		Prober:            probe.NewClient(time.Second),
		Users:             &auth.Store{},
		ReloadTrigger:     make(chan struct{}, 1),
		CheckBurst:        2,
		CheckRefillPerMin: 1,
	})

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/check?url=%d", i), nil))
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third probe = %v, want 429 after burst of 2", last)
	}
}
