package db

import (
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"climate-server/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		cfg      config.Config
		want     []string
		notWant  []string
		exactDSN string
	}{
		{
			name:     "explicit dsn wins",
			cfg:      config.Config{SQLiteDSN: "file::memory:?cache=shared", SQLitePath: "ignored.db"},
			exactDSN: "file::memory:?cache=shared",
		},
		{
			name:    "plain path read-write",
			cfg:     config.Config{SQLitePath: filepath.Join(dir, "rw", "hawaii.sqlite")},
			want:    []string{"file:" + filepath.Join(dir, "rw", "hawaii.sqlite") + "?", "_journal_mode=WAL", "_foreign_keys=on", "_busy_timeout=5000"},
			notWant: []string{"mode=ro"},
		},
		{
			name:    "read-only",
			cfg:     config.Config{SQLitePath: filepath.Join(dir, "hawaii.sqlite"), SQLiteReadOnly: true},
			want:    []string{"mode=ro", "_busy_timeout=5000"},
			notWant: []string{"_journal_mode=WAL"},
		},
		{
			name: "file prefix with query",
			cfg:  config.Config{SQLitePath: "file:" + filepath.Join(dir, "q.db") + "?cache=shared"},
			want: []string{"?cache=shared&_busy_timeout=5000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if err != nil {
				t.Fatalf("buildDSN: %v", err)
			}
			if tt.exactDSN != "" && got != tt.exactDSN {
				t.Fatalf("buildDSN = %q; want %q", got, tt.exactDSN)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("buildDSN = %q; want it to contain %q", got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("buildDSN = %q; must not contain %q", got, nw)
				}
			}
		})
	}
}

func TestOpen_andClose(t *testing.T) {
	cfg := config.Config{
		SQLiteDriver:       "sqlite3",
		SQLitePath:         filepath.Join(t.TempDir(), "open.db"),
		SQLiteMaxOpenConns: 2,
		SQLiteMaxIdleConns: 1,
	}
	conn, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var one int
	if err := conn.QueryRow(`SELECT 1`).Scan(&one); err != nil || one != 1 {
		t.Fatalf("SELECT 1 = %d, %v", one, err)
	}
	if got := conn.Stats().MaxOpenConnections; got != 2 {
		t.Errorf("MaxOpenConnections = %d; want 2", got)
	}
	if err := Close(conn); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v; want nil", err)
	}
}

func TestOpen_readOnlyMissingFileFails(t *testing.T) {
	cfg := config.Config{
		SQLiteDriver:   "sqlite3",
		SQLitePath:     filepath.Join(t.TempDir(), "missing.sqlite"),
		SQLiteReadOnly: true,
	}
	conn, err := Open(cfg, nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("Open(read-only, missing file) = nil error; want error")
	}
}

// defaultConfig loads the configuration a bare deployment gets, pointed at path.
func defaultConfig(t *testing.T, path string) config.Config {
	t.Helper()
	for _, k := range []string{"SQLITE_DSN", "SQLITE_READ_ONLY", "SQLITE_MIGRATE", "SQLITE_LOG_SQL", "SQLITE_DRIVER"} {
		t.Setenv(k, "")
	}
	t.Setenv("SQLITE_PATH", path)
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	return cfg
}

func TestOpen_defaultMissingDatasetFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Resources")
	path := filepath.Join(dir, "hawaii.sqlite")

	conn, err := Open(defaultConfig(t, path), nil)
	if err == nil {
		_ = conn.Close()
		t.Fatal("Open(missing dataset) = nil error; want error")
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		t.Errorf("dataset file exists after failed open (stat err = %v)", statErr)
	}
	if _, statErr := os.Stat(dir); !errors.Is(statErr, fs.ErrNotExist) {
		t.Errorf("parent directory was created (stat err = %v)", statErr)
	}
}

func TestOpen_defaultLeavesDatasetUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	seed, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open seed: %v", err)
	}
	if _, err := seed.Exec(`CREATE TABLE measurement (id INTEGER PRIMARY KEY, date TEXT); INSERT INTO measurement (date) VALUES ('2017-08-23')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_ = seed.Close()

	conn, err := Open(defaultConfig(t, path), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = conn.Close() }()

	var mode string
	if err := conn.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "delete" {
		t.Errorf("journal_mode = %q after default open; want delete", mode)
	}
	if _, err := conn.Exec(`INSERT INTO measurement (date) VALUES ('2018-01-01')`); err == nil {
		t.Error("insert through default open succeeded; want read-only failure")
	}
	if _, statErr := os.Stat(path + "-wal"); !errors.Is(statErr, fs.ErrNotExist) {
		t.Errorf("-wal side file exists after default open (stat err = %v)", statErr)
	}
}

func TestOpen_withSQLLogging(t *testing.T) {
	handler := &captureHandler{}
	cfg := config.Config{
		SQLiteDriver: "sqlite3",
		SQLitePath:   filepath.Join(t.TempDir(), "logged.db"),
		SQLiteLogSQL: true,
	}
	conn, err := Open(cfg, newCaptureLogger(handler))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = conn.Close() }()

	var n int
	if err := conn.QueryRow(`SELECT ?`, 7).Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(handler.recordsFor(t, "sql")) == 0 {
		t.Fatal("expected sql log records when SQLiteLogSQL is enabled")
	}
}
