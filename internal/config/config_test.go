package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ENVIRONMENT", "TABLE_PREFIX", "SUPABASE_URL", "REDIS_URL", "SELECTION_TTL", "LOG_MAX_FILES", "DEBUG", "PORT"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q, want dev_", cfg.TablePrefix)
	}
	if cfg.JWKSURL != "" {
		t.Errorf("JWKSURL = %q, want empty without SUPABASE_URL", cfg.JWKSURL)
	}
	if cfg.SelectionTTL != 24*time.Hour {
		t.Errorf("SelectionTTL = %v, want 24h", cfg.SelectionTTL)
	}
	if cfg.LogMaxFiles != 10 {
		t.Errorf("LogMaxFiles = %d, want 10", cfg.LogMaxFiles)
	}
	if !cfg.Debug {
		t.Error("Debug should default to true in dev")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("DEBUG", "")
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SELECTION_TTL", "90m")
	t.Setenv("LOG_MAX_FILES", "nope")

	cfg := Load()

	if cfg.TablePrefix != "prod_" {
		t.Errorf("TablePrefix = %q, want prod_", cfg.TablePrefix)
	}
	if cfg.Debug {
		t.Error("Debug should default to false in prod")
	}
	if want := "https://abc.supabase.co/auth/v1/.well-known/jwks.json"; cfg.JWKSURL != want {
		t.Errorf("JWKSURL = %q, want %q", cfg.JWKSURL, want)
	}
	if cfg.SelectionTTL != 90*time.Minute {
		t.Errorf("SelectionTTL = %v, want 90m", cfg.SelectionTTL)
	}
	if cfg.LogMaxFiles != 10 {
		t.Errorf("LogMaxFiles = %d, want fallback 10", cfg.LogMaxFiles)
	}
}

func TestDevAuth(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "dev user without jwks", cfg: Config{Environment: "dev", DevUserID: "u1"}, want: true},
		{name: "jwks configured", cfg: Config{Environment: "dev", DevUserID: "u1", JWKSURL: "https://x/jwks.json"}, want: false},
		{name: "no dev user", cfg: Config{Environment: "dev"}, want: false},
		{name: "prod", cfg: Config{Environment: "prod", DevUserID: "u1"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DevAuth(); got != tt.want {
				t.Errorf("DevAuth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{CORSOrigins: " http://a.test, ,http://b.test "}
	if diff := cmp.Diff([]string{"http://a.test", "http://b.test"}, cfg.CORSOriginList()); diff != "" {
		t.Errorf("CORSOriginList mismatch (-want +got):\n%s", diff)
	}
}

func TestSetupLogFile_RotatesOldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"lexlib-2020-01-01T00-00-00.log", "lexlib-2020-01-02T00-00-00.log", "lexlib-2020-01-03T00-00-00.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	f, err := SetupLogFile(dir, 2)
	if err != nil {
		t.Fatalf("SetupLogFile: %v", err)
	}
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d log files after rotation, want 2: %v", len(files), files)
	}
	for _, name := range files {
		if filepath.Base(name) == "lexlib-2020-01-01T00-00-00.log" {
			t.Errorf("oldest log file was not removed")
		}
	}
}

func TestNewLogger_DebugLevel(t *testing.T) {
	for _, debug := range []bool{false, true} {
		var buf bytes.Buffer
		logger := NewLogger(debug, &buf)
		logger.Debug("tree built", "document_id", "d1")

		if got := strings.Contains(buf.String(), "tree built"); got != debug {
			t.Errorf("debug=%v: debug event logged = %v", debug, got)
		}
	}
}
