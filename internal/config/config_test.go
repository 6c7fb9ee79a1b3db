package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Backend != BackendJSON || cfg.SQLite.BusyTimeout != 5000 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
data_dir: `+dir+`
backend: sqlite
commands:
  path: /abs/cmds.json
sqlite:
  path: mem.db
  busy_timeout: 250
log:
  format: json
  verbose: true
metrics:
  addr: ":9464"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := &Config{
		DataDir:  dir,
		Backend:  BackendSQLite,
		Commands: SnapshotConfig{Path: "/abs/cmds.json"},
		Contexts: SnapshotConfig{Path: "contexts.json"},
		SQLite:   SQLiteConfig{Path: "mem.db", BusyTimeout: 250},
		Log:      LogConfig{Format: LogJSON, Verbose: true},
		Metrics:  MetricsConfig{Addr: ":9464"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if got := cfg.CommandsPath(); got != "/abs/cmds.json" {
		t.Errorf("Expected absolute path kept, got %s", got)
	}
	if got := cfg.ContextsPath(); got != filepath.Join(dir, "contexts.json") {
		t.Errorf("Expected path under data dir, got %s", got)
	}
	if got := cfg.SQLitePath(); got != filepath.Join(dir, "mem.db") {
		t.Errorf("Expected path under data dir, got %s", got)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("RECALL_TEST_DIR", "/srv/recall")
	path := writeConfig(t, `
data_dir: ${RECALL_TEST_DIR}
backend: ${RECALL_TEST_BACKEND:-sqlite}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/srv/recall" {
		t.Errorf("Expected data_dir /srv/recall, got %s", cfg.DataDir)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Expected default backend sqlite, got %s", cfg.Backend)
	}
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{"Unresolved", "data_dir: ${RECALL_TEST_UNSET_VAR}\n", "unresolved variable: RECALL_TEST_UNSET_VAR"},
		{"Malformed", "backend: [json\n", "parsing"},
		{"BadBackend", "backend: postgres\n", `backend must be "json" or "sqlite"`},
		{"BadLogFormat", "log:\n  format: xml\n", "log.format"},
		{"NegativeTimeout", "sqlite:\n  busy_timeout: -1\n", "busy_timeout"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error containing %q, got %v", tc.want, err)
			}
			if !strings.HasPrefix(err.Error(), "config:") {
				t.Errorf("Expected config: prefix, got %v", err)
			}
		})
	}
}

func TestResolve_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := &Config{DataDir: "~/.recall"}
	if got, want := cfg.Resolve("x.json"), filepath.Join(home, ".recall", "x.json"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if got, want := cfg.Resolve("~/elsewhere.json"), filepath.Join(home, "elsewhere.json"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestMarshal(t *testing.T) {
	out, err := Marshal(Default())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, key := range []string{"data_dir:", "backend: json", "busy_timeout: 5000"} {
		if !strings.Contains(string(out), key) {
			t.Errorf("Expected %q in output:\n%s", key, out)
		}
	}
}
