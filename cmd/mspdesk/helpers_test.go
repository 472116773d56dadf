package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/baiirun/mspdesk/internal/api"
	"github.com/baiirun/mspdesk/internal/store"
)

// harness runs the CLI against a chi-routed fake backend with its own
// config file and state database.
type harness struct {
	t          *testing.T
	dir        string
	configPath string
	dbPath     string
}

func setupCLI(t *testing.T, routes func(r chi.Router)) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	r := chi.NewRouter()
	r.Route("/api", routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	h := &harness{
		t:          t,
		dir:        dir,
		configPath: filepath.Join(dir, "config.yaml"),
		dbPath:     filepath.Join(dir, "state.db"),
	}
	cfg := fmt.Sprintf("api_url: %s/api\ndownload_dir: %s\nlog_level: error\n", srv.URL, filepath.Join(dir, "downloads"))
	if err := os.WriteFile(h.configPath, []byte(cfg), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return h
}

// run executes one command line and returns its stdout.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", h.configPath, "--db", h.dbPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// mustRun is run that fails the test on error.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("mspdesk %v: %v", args, err)
	}
	return out
}

func (h *harness) store() *store.DB {
	h.t.Helper()
	db, err := store.OpenDefault(h.dbPath)
	if err != nil {
		h.t.Fatalf("failed to open store: %v", err)
	}
	h.t.Cleanup(func() { db.Close() })
	return db
}

// seedSession stores a token as if 'login' had run.
func (h *harness) seedSession(token string, expires *time.Time) {
	h.t.Helper()
	s := store.Session{Token: token, Email: "ops@example.test", ExpiresAt: expires}
	if err := h.store().SaveSession(s); err != nil {
		h.t.Fatalf("failed to seed session: %v", err)
	}
}

func signToken(t *testing.T, email string, exp time.Time) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, api.TokenClaims{
		Email:            email,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}).SignedString([]byte("backend-only"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, r *http.Request, v any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Errorf("failed to decode request body: %v", err)
	}
}
