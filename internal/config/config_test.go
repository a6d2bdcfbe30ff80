package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
  password: "secret"
  sslmode: "disable"
auth:
  jwt_secret: "test-secret-123"
ollama:
  base_url: "http://localhost:11434"
  model: "llama3"
  timeout_seconds: 120
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "liftlog" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "liftlog")
	}
	if cfg.Auth.JWTSecret != "test-secret-123" {
		t.Errorf("auth.jwt_secret = %q, want %q", cfg.Auth.JWTSecret, "test-secret-123")
	}
	if cfg.Ollama.Model != "llama3" {
		t.Errorf("ollama.model = %q, want %q", cfg.Ollama.Model, "llama3")
	}
	if cfg.Ollama.Timeout() != 2*time.Minute {
		t.Errorf("ollama timeout = %v, want 2m", cfg.Ollama.Timeout())
	}
}

// TestEnvOverride verifies that LIFTLOG_ env vars take precedence over YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("LIFTLOG_DB_HOST", "override-host")
	t.Setenv("LIFTLOG_DB_PORT", "9999")
	t.Setenv("LIFTLOG_AUTH_JWT_SECRET", "env-secret")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("auth.jwt_secret = %q, want %q", cfg.Auth.JWTSecret, "env-secret")
	}
	if cfg.Database.Name != "liftlog" {
		t.Errorf("database.name = %q, want yaml value to survive", cfg.Database.Name)
	}
}

// TestValidationMissingSecret verifies a config without a JWT secret is rejected.
func TestValidationMissingSecret(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
`
	if _, err := Load(writeTemp(t, yaml)); err == nil {
		t.Fatal("expected validation error for missing jwt_secret")
	}
}

// TestDefaults verifies the Ollama and session defaults fill in when omitted.
func TestDefaults(t *testing.T) {
	yaml := `
server:
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "liftlog"
  user: "liftlog"
auth:
  jwt_secret: "s"
`
	cfg, err := Load(writeTemp(t, yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ollama.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("ollama.base_url default = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Session.Dir != "data" {
		t.Errorf("session.dir default = %q", cfg.Session.Dir)
	}
	if cfg.Auth.TokenTTL() != 7*24*time.Hour {
		t.Errorf("token ttl default = %v", cfg.Auth.TokenTTL())
	}
}

// TestDSN verifies the Postgres connection string shape.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "liftlog", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/liftlog?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
