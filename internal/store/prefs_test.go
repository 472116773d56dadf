package store

import (
	"errors"
	"testing"
	"time"
)

func TestViewMode_DefaultsToList(t *testing.T) {
	db := setupTestDB(t)

	mode, err := db.ViewMode("tickets")
	if err != nil {
		t.Fatalf("ViewMode: %v", err)
	}
	if mode != ViewList {
		t.Errorf("mode = %q, want list", mode)
	}
}

func TestSetViewMode_Persists(t *testing.T) {
	db := setupTestDB(t)

	if err := db.SetViewMode("tickets", ViewBoard); err != nil {
		t.Fatalf("SetViewMode: %v", err)
	}
	if err := db.SetViewMode("accounts", ViewList); err != nil {
		t.Fatalf("SetViewMode: %v", err)
	}

	mode, err := db.ViewMode("tickets")
	if err != nil {
		t.Fatalf("ViewMode: %v", err)
	}
	if mode != ViewBoard {
		t.Errorf("tickets mode = %q, want board", mode)
	}

	// Overwrite
	if err := db.SetViewMode("tickets", ViewList); err != nil {
		t.Fatalf("SetViewMode: %v", err)
	}
	if mode, _ := db.ViewMode("tickets"); mode != ViewList {
		t.Errorf("tickets mode = %q after overwrite, want list", mode)
	}
}

func TestSetViewMode_RejectsUnknown(t *testing.T) {
	db := setupTestDB(t)
	if err := db.SetViewMode("tickets", ViewMode("grid")); err == nil {
		t.Error("expected error for unknown view mode")
	}
}

func TestViewMode_CorruptValueReadsAsList(t *testing.T) {
	db := setupTestDB(t)
	if err := db.SetPreference("view_mode.tickets", "grid"); err != nil {
		t.Fatal(err)
	}
	mode, err := db.ViewMode("tickets")
	if err != nil {
		t.Fatalf("ViewMode: %v", err)
	}
	if mode != ViewList {
		t.Errorf("mode = %q, want list", mode)
	}
}

func TestSession_RoundTrip(t *testing.T) {
	db := setupTestDB(t)

	if _, err := db.LoadSession(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	in := Session{APIURL: "https://api.example.test", Token: "tok", Email: "ops@example.test", ExpiresAt: &expires}
	if err := db.SaveSession(in); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := db.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if got.Token != "tok" || got.Email != "ops@example.test" || got.APIURL != in.APIURL {
		t.Errorf("session = %+v", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Errorf("expires = %v, want %v", got.ExpiresAt, expires)
	}

	if err := db.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}
	if _, err := db.LoadSession(); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession after clear, got %v", err)
	}
	// Clearing twice is fine.
	if err := db.ClearSession(); err != nil {
		t.Errorf("second ClearSession: %v", err)
	}
}

func TestSession_RequiresToken(t *testing.T) {
	db := setupTestDB(t)
	if err := db.SaveSession(Session{APIURL: "x"}); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (Session{}).Expired(now) {
		t.Error("session without expiry should not be expired")
	}
	if !(Session{ExpiresAt: &past}).Expired(now) {
		t.Error("past expiry should be expired")
	}
	if (Session{ExpiresAt: &future}).Expired(now) {
		t.Error("future expiry should not be expired")
	}
}
