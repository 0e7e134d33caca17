package httpapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"climate-server/internal/config"
	"climate-server/internal/logging"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestHandler(t *testing.T, db *sql.DB, logOut io.Writer) (http.Handler, *http.ServeMux) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	metrics := NewMetrics()
	mux := NewMux(db, metrics)
	mux.HandleFunc("GET /api/v1.0/stations", func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("listing stations")
		w.WriteHeader(http.StatusOK)
	})
	return Handler(mux, metrics, logger), mux
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h, _ := newTestHandler(t, openDB(t), io.Discard)
		rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["status"] != "ok" {
			t.Errorf("body = %v", body)
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := openDB(t)
		h, _ := newTestHandler(t, db, io.Discard)
		_ = db.Close()
		rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d; want 500", rec.Code)
		}
	})
}

func TestRequestID(t *testing.T) {
	var logs bytes.Buffer
	h, _ := newTestHandler(t, openDB(t), &logs)

	t.Run("generated", func(t *testing.T) {
		rec := do(h, httptest.NewRequest(http.MethodGet, "/api/v1.0/stations", nil))
		id := rec.Header().Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("X-Request-ID = %q; want a uuid: %v", id, err)
		}
		if !strings.Contains(logs.String(), `"request_id":"`+id+`"`) {
			t.Errorf("logs do not carry request id %s:\n%s", id, logs.String())
		}
	})

	t.Run("propagated", func(t *testing.T) {
		logs.Reset()
		req := httptest.NewRequest(http.MethodGet, "/api/v1.0/stations", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := do(h, req)
		if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
			t.Fatalf("X-Request-ID = %q; want abc-123", got)
		}
		// Both the handler line and the access line carry it.
		if n := strings.Count(logs.String(), `"request_id":"abc-123"`); n != 2 {
			t.Errorf("request id appears %d times in logs; want 2:\n%s", n, logs.String())
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	h, _ := newTestHandler(t, openDB(t), &logs)
	do(h, httptest.NewRequest(http.MethodGet, "/nope", nil))

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if entry["msg"] == "http request" {
			break
		}
	}
	if entry["msg"] != "http request" || entry["path"] != "/nope" || entry["status"] != float64(http.StatusNotFound) {
		t.Fatalf("access log = %v; want 404 for /nope", entry)
	}
}

func TestMetrics(t *testing.T) {
	h, _ := newTestHandler(t, openDB(t), io.Discard)
	do(h, httptest.NewRequest(http.MethodGet, "/api/v1.0/stations", nil))
	do(h, httptest.NewRequest(http.MethodGet, "/api/v1.0/stations", nil))
	do(h, httptest.NewRequest(http.MethodGet, "/missing", nil))

	rec := do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`http_requests_total{method="GET",route="GET /api/v1.0/stations",status_code="200"} 2`,
		`http_requests_total{method="GET",route="unmatched",status_code="404"} 1`,
		`http_request_duration_seconds_count{method="GET",route="GET /api/v1.0/stations"} 2`,
		"http_requests_in_flight",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestStatusRecorder_firstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	_, _ = sr.Write([]byte("x"))
	sr.WriteHeader(http.StatusTeapot)
	if sr.status != http.StatusOK {
		t.Fatalf("status = %d; want 200 once the body was written", sr.status)
	}
}

func TestNewServer(t *testing.T) {
	h := http.NewServeMux()
	srv := NewServer(config.Config{HTTPAddr: ":8081"}, h)
	if srv.Addr != ":8081" || srv.Handler != h {
		t.Fatalf("server = %+v", srv)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Error("ReadHeaderTimeout not set")
	}
}
