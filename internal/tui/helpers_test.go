package tui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/store"
	"github.com/baiirun/mspdesk/internal/ticket"
)

// fakeBackend is an in-memory Backend that records the mutations it sees.
type fakeBackend struct {
	mu        sync.Mutex
	tickets   []model.Ticket
	comments  []model.Comment
	articles  []model.Article
	updates   []model.TicketUpdate
	posted    []model.NewComment
	updateErr error
}

func newFakeBackend(tickets ...model.Ticket) *fakeBackend {
	return &fakeBackend{
		tickets:  tickets,
		articles: []model.Article{{ID: 7, Title: "VPN token reset"}, {ID: 9, Title: "Printer drivers"}},
	}
}

func (f *fakeBackend) find(id int64) (int, bool) {
	for i, t := range f.tickets {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (f *fakeBackend) ListTickets(context.Context, model.TicketFilter) ([]model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Ticket(nil), f.tickets...), nil
}

func (f *fakeBackend) GetTicket(_ context.Context, id int64) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, errors.New("not found")
	}
	t := f.tickets[i]
	return &t, nil
}

func (f *fakeBackend) UpdateTicket(_ context.Context, id int64, u model.TicketUpdate) (*model.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, u)
	i, ok := f.find(id)
	if !ok {
		return nil, errors.New("not found")
	}
	t := &f.tickets[i]
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Resolution != nil {
		t.Resolution = u.Resolution
	}
	if u.ResolutionCommentID != nil {
		t.ResolutionCommentID = u.ResolutionCommentID
	}
	if u.AssignedTechID != nil {
		t.AssignedTechID = u.AssignedTechID
	}
	if u.ArticleIDs != nil {
		t.Articles = nil
		for _, aid := range *u.ArticleIDs {
			t.Articles = append(t.Articles, model.Article{ID: aid})
		}
	}
	out := *t
	return &out, nil
}

func (f *fakeBackend) ListComments(_ context.Context, _ string, id int64) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Comment
	for _, c := range f.comments {
		if c.ResourceID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateComment(_ context.Context, in model.NewComment) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, in)
	c := model.Comment{ID: int64(100 + len(f.posted)), Body: in.Body, Visibility: in.Visibility, ResourceType: in.ResourceType, ResourceID: in.ResourceID}
	f.comments = append(f.comments, c)
	return &c, nil
}

func (f *fakeBackend) SetCommentVisibility(_ context.Context, id int64, v model.Visibility) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Visibility = v
			c := f.comments[i]
			return &c, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) ListContacts(context.Context, int64) ([]model.Contact, error) {
	return []model.Contact{{ID: 1, Name: "Dana Reyes", Email: "dana@example.com"}}, nil
}

func (f *fakeBackend) ListProjects(context.Context, int64) ([]model.Project, error) {
	return nil, nil
}

func (f *fakeBackend) ListMilestones(context.Context, int64) ([]model.Milestone, error) {
	return nil, nil
}

func (f *fakeBackend) ListArticles(context.Context, string) ([]model.Article, error) {
	return f.articles, nil
}

func (f *fakeBackend) ListTechs(context.Context) ([]model.Tech, error) {
	return []model.Tech{{ID: 3, Name: "Sam Ortiz"}, {ID: 4, Name: "Priya Nair"}}, nil
}

func (f *fakeBackend) ListAssets(context.Context, int64) ([]model.Asset, error) {
	return nil, nil
}

func (f *fakeBackend) ListTimeEntries(context.Context, int64) ([]model.TimeEntry, error) {
	return nil, nil
}

func (f *fakeBackend) ListMaterials(context.Context, int64) ([]model.MaterialEntry, error) {
	return nil, nil
}

func (f *fakeBackend) GenerateInvoice(context.Context, int64) (*model.Invoice, error) {
	return nil, errors.New("nothing to bill")
}

func setupStore(t *testing.T) *store.DB {
	t.Helper()
	st, err := store.OpenDefault(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// loadedDetail returns a detail model with the ticket already fetched.
func loadedDetail(t *testing.T, f *fakeBackend, id int64) detailModel {
	t.Helper()
	d := newDetailModel(context.Background(), ticket.NewService(f), DefaultTheme, DefaultKeyMap, id)
	d.setSize(100, 40)
	d, _ = d.Update(d.load()())
	if d.detail == nil {
		t.Fatalf("detail not loaded: %s", d.toast)
	}
	return d
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

// typeText sends s one key at a time, spaces as space keys.
func typeText(d detailModel, s string) detailModel {
	for _, r := range s {
		msg := runes(string(r))
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		}
		d, _ = d.Update(msg)
	}
	return d
}

// run executes cmd and feeds its message back into d.
func run(t *testing.T, d detailModel, cmd tea.Cmd) detailModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	d, _ = d.Update(cmd())
	return d
}
