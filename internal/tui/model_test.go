package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/store"
)

func listTickets() []model.Ticket {
	return []model.Ticket{
		{ID: 1, Subject: "Email bouncing", Status: model.TicketStatusNew},
		{ID: 2, Subject: "VPN drops", Status: model.TicketStatusOpen},
		{ID: 3, Subject: "New laptop", Status: model.TicketStatusPending},
		{ID: 4, Subject: "Printer jam", Status: model.TicketStatusNew},
	}
}

func initModel(t *testing.T, st *store.DB, f *fakeBackend) Model {
	t.Helper()
	m := New(context.Background(), f, st)
	updated, _ := m.Update(m.Init()())
	m = updated.(Model)
	if m.err != nil {
		t.Fatalf("load failed: %v", m.err)
	}
	return m
}

func visibleIDs(m Model) []int64 {
	var ids []int64
	for _, tk := range m.visible() {
		ids = append(ids, tk.ID)
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestModel_RecentTicketsFirst(t *testing.T) {
	st := setupStore(t)
	for _, id := range []int64{2, 4} {
		if err := st.RecordVisit(ticketHistory, store.Visit{ID: id}); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}
	m := initModel(t, st, newFakeBackend(listTickets()...))

	if got, want := visibleIDs(m), []int64{4, 2, 1, 3}; !equalIDs(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestModel_OpenRecordsVisit(t *testing.T) {
	st := setupStore(t)
	m := initModel(t, st, newFakeBackend(listTickets()...))

	updated, _ := m.Update(runes("j"))
	updated, cmd := updated.(Model).Update(keyOf(tea.KeyEnter))
	m = updated.(Model)

	if m.detail == nil || m.detail.id != 2 {
		t.Fatalf("detail = %+v, want ticket 2", m.detail)
	}
	if cmd == nil {
		t.Fatal("expected detail load command")
	}
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if m.detail.detail == nil {
		t.Fatal("detail load message not routed")
	}

	ids, err := st.RecentIDs(ticketHistory)
	if err != nil {
		t.Fatalf("RecentIDs: %v", err)
	}
	if !equalIDs(ids, []int64{2}) {
		t.Errorf("recent = %v, want [2]", ids)
	}

	updated, cmd = m.Update(keyOf(tea.KeyEsc))
	m = updated.(Model)
	if m.detail != nil {
		t.Error("esc did not return to the list")
	}
	updated, _ = m.Update(cmd())
	if got := visibleIDs(updated.(Model)); got[0] != 2 {
		t.Errorf("visited ticket not first after reload: %v", got)
	}
}

func TestModel_ViewModePersists(t *testing.T) {
	st := setupStore(t)
	m := initModel(t, st, newFakeBackend(listTickets()...))

	updated, _ := m.Update(runes("v"))
	m = updated.(Model)
	if m.viewMode != store.ViewBoard {
		t.Fatalf("viewMode = %s, want board", m.viewMode)
	}
	if got, want := visibleIDs(m), []int64{1, 4, 2, 3}; !equalIDs(got, want) {
		t.Errorf("board order = %v, want %v", got, want)
	}

	again := New(context.Background(), newFakeBackend(), st)
	if again.viewMode != store.ViewBoard {
		t.Errorf("reloaded viewMode = %s, want board", again.viewMode)
	}
	if again.View() == "" {
		t.Error("empty view")
	}
}

func TestModel_Search(t *testing.T) {
	m := initModel(t, setupStore(t), newFakeBackend(listTickets()...))

	updated, _ := m.Update(runes("/"))
	for _, r := range "vpn" {
		updated, _ = updated.(Model).Update(runes(string(r)))
	}
	updated, _ = updated.(Model).Update(keyOf(tea.KeyEnter))
	m = updated.(Model)

	if got := visibleIDs(m); !equalIDs(got, []int64{2}) {
		t.Errorf("search results = %v, want [2]", got)
	}
	if m.searching {
		t.Error("enter should leave search mode")
	}

	updated, _ = m.Update(runes("/"))
	updated, _ = updated.(Model).Update(keyOf(tea.KeyEsc))
	if got := visibleIDs(updated.(Model)); len(got) != 4 {
		t.Errorf("esc should clear the search, got %v", got)
	}
}

func TestModel_UnknownStatusIsDrawn(t *testing.T) {
	tickets := append(listTickets(), model.Ticket{ID: 99, Subject: "Firmware hold", Status: "on_hold"})

	tests := []struct {
		mode store.ViewMode
		want string // extra text the view must carry
	}{
		{store.ViewList, "ON HOLD"},
		{store.ViewBoard, "OTHER"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			st := setupStore(t)
			if err := st.SetViewMode(ticketsPage, tt.mode); err != nil {
				t.Fatalf("SetViewMode: %v", err)
			}
			m := initModel(t, st, newFakeBackend(tickets...))

			updated, _ := m.Update(runes("G"))
			m = updated.(Model)
			vis := m.visible()
			if len(vis) != 5 || vis[m.cursor].ID != 99 {
				t.Fatalf("cursor on %+v, want #99 last of 5", vis[m.cursor])
			}
			view := m.View()
			if !strings.Contains(view, "#99") {
				t.Errorf("selected ticket #99 not drawn:\n%s", view)
			}
			if !strings.Contains(view, tt.want) {
				t.Errorf("view missing %q:\n%s", tt.want, view)
			}
		})
	}
}

func TestModel_BoardColumnScrollsToCursor(t *testing.T) {
	st := setupStore(t)
	if err := st.SetViewMode(ticketsPage, store.ViewBoard); err != nil {
		t.Fatalf("SetViewMode: %v", err)
	}
	tickets := listTickets()
	for id := int64(10); id <= 12; id++ {
		tickets = append(tickets, model.Ticket{ID: id, Subject: "Onboarding", Status: model.TicketStatusNew})
	}
	m := initModel(t, st, newFakeBackend(tickets...))

	// Board order starts 1, 4, 10, 11, 12 in the "new" column.
	var updated tea.Model = m
	for range 4 {
		updated, _ = updated.(Model).Update(runes("j"))
	}
	m = updated.(Model)
	if id := m.visible()[m.cursor].ID; id != 12 {
		t.Fatalf("cursor on #%d, want #12", id)
	}
	if view := m.View(); !strings.Contains(view, "#12") {
		t.Errorf("selected ticket #12 scrolled out of its column:\n%s", view)
	}
}
