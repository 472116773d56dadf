package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/baiirun/mspdesk/internal/api"
	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/store"
)

func setup(t *testing.T, impersonate int64, routes func(r chi.Router)) (*Service, *store.DB) {
	t.Helper()
	r := chi.NewRouter()
	routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	db, err := store.OpenDefault(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.SaveSession(store.Session{APIURL: srv.URL, Token: "tok"}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	client := api.New(srv.URL, api.WithToken("tok"))
	return NewService(client, db, impersonate, zerolog.Nop()), db
}

func TestDashboard_Impersonates(t *testing.T) {
	var got string
	svc, _ := setup(t, 17, func(r chi.Router) {
		r.Get("/portal/dashboard", func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query().Get("impersonate")
			_ = json.NewEncoder(w).Encode(model.PortalDashboard{AccountID: 17, AccountName: "Acme"})
		})
	})

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if got != "17" || d.AccountName != "Acme" {
		t.Errorf("impersonate = %q, dashboard = %+v", got, d)
	}
}

func TestForbiddenForcesLogout(t *testing.T) {
	svc, db := setup(t, 5, func(r chi.Router) {
		r.Get("/portal/tickets", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	})

	_, err := svc.Tickets(context.Background())
	if !errors.Is(err, ErrLoggedOut) {
		t.Fatalf("err = %v, want ErrLoggedOut", err)
	}
	if _, err := db.LoadSession(); !errors.Is(err, store.ErrNoSession) {
		t.Errorf("session should be cleared, LoadSession err = %v", err)
	}
}

func TestOtherErrorsKeepSession(t *testing.T) {
	svc, db := setup(t, 0, func(r chi.Router) {
		r.Get("/portal/invoices", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "oops", http.StatusInternalServerError)
		})
	})

	_, err := svc.Invoices(context.Background())
	if err == nil || errors.Is(err, ErrLoggedOut) {
		t.Fatalf("err = %v, want plain API error", err)
	}
	if _, err := db.LoadSession(); err != nil {
		t.Errorf("session should survive a 500, got %v", err)
	}
}

type failingSessions struct{}

func (failingSessions) ClearSession() error { return errors.New("disk full") }

type forbiddenBackend struct{ Backend }

func (forbiddenBackend) PortalDashboard(context.Context, int64) (*model.PortalDashboard, error) {
	return nil, &api.APIError{Status: http.StatusForbidden}
}

func TestForbidden_ClearFailureStillLoggedOut(t *testing.T) {
	svc := NewService(forbiddenBackend{}, failingSessions{}, 0, zerolog.Nop())
	_, err := svc.Dashboard(context.Background())
	if !errors.Is(err, ErrLoggedOut) {
		t.Errorf("err = %v, want ErrLoggedOut", err)
	}
}
