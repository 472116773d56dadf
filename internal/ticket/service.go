// Package ticket orchestrates the ticket detail workflow: loading every
// record the detail view shows, editing metadata, commenting, billing and
// the resolution flow.
//
// It holds no state between calls. Callers re-fetch with LoadDetail after
// any mutation.
package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/textedit"
)

var (
	// ErrEmptyResolution is returned when the resolution text is blank.
	ErrEmptyResolution = errors.New("resolution text is required")
	// ErrAlreadyResolved is returned when resolving a resolved ticket.
	ErrAlreadyResolved = errors.New("ticket is already resolved")
	// ErrEmptyComment is returned when the comment body is blank.
	ErrEmptyComment = errors.New("comment body is required")
)

// ResourceType is the comment parent type for tickets.
const ResourceType = "ticket"

// Backend is the subset of the REST client the ticket workflow uses.
type Backend interface {
	GetTicket(ctx context.Context, id int64) (*model.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, update model.TicketUpdate) (*model.Ticket, error)
	ListComments(ctx context.Context, resourceType string, resourceID int64) ([]model.Comment, error)
	CreateComment(ctx context.Context, in model.NewComment) (*model.Comment, error)
	SetCommentVisibility(ctx context.Context, id int64, v model.Visibility) (*model.Comment, error)
	ListContacts(ctx context.Context, accountID int64) ([]model.Contact, error)
	ListProjects(ctx context.Context, accountID int64) ([]model.Project, error)
	ListMilestones(ctx context.Context, projectID int64) ([]model.Milestone, error)
	ListArticles(ctx context.Context, query string) ([]model.Article, error)
	ListTechs(ctx context.Context) ([]model.Tech, error)
	ListAssets(ctx context.Context, accountID int64) ([]model.Asset, error)
	ListTimeEntries(ctx context.Context, ticketID int64) ([]model.TimeEntry, error)
	ListMaterials(ctx context.Context, ticketID int64) ([]model.MaterialEntry, error)
	GenerateInvoice(ctx context.Context, ticketID int64) (*model.Invoice, error)
}

// Service runs ticket operations against a Backend.
type Service struct {
	backend Backend
	now     func() time.Time
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend, now: time.Now}
}

// Detail is everything the ticket detail view renders.
type Detail struct {
	Ticket     model.Ticket
	Comments   []model.Comment
	Contacts   []model.Contact // candidates from the ticket's account
	Projects   []model.Project
	Milestones []model.Milestone // across the account's projects
	Articles   []model.Article
	Techs      []model.Tech
	Assets     []model.Asset
	Time       []model.TimeEntry
	Materials  []model.MaterialEntry
}

// Billing totals the unbilled time and materials.
func (d *Detail) Billing() model.BillingSummary {
	return model.SummarizeBilling(d.Time, d.Materials)
}

// Milestone returns the ticket's milestone, if it has one and it is loaded.
func (d *Detail) Milestone() *model.Milestone {
	if d.Ticket.MilestoneID == nil {
		return nil
	}
	for i := range d.Milestones {
		if d.Milestones[i].ID == *d.Ticket.MilestoneID {
			return &d.Milestones[i]
		}
	}
	return nil
}

// TechName returns the assigned tech's name, or "" when unassigned.
func (d *Detail) TechName() string {
	if d.Ticket.AssignedTechID == nil {
		return ""
	}
	for _, t := range d.Techs {
		if t.ID == *d.Ticket.AssignedTechID {
			return t.Name
		}
	}
	return d.Ticket.AssignedTechName
}

// ResolutionComment returns the comment the resolution was promoted from.
func (d *Detail) ResolutionComment() *model.Comment {
	if d.Ticket.ResolutionCommentID == nil {
		return nil
	}
	for i := range d.Comments {
		if d.Comments[i].ID == *d.Ticket.ResolutionCommentID {
			return &d.Comments[i]
		}
	}
	return nil
}

// LoadDetail fetches the ticket and then everything its detail view needs.
// The dependent fetches run concurrently; the first error wins.
func (s *Service) LoadDetail(ctx context.Context, id int64) (*Detail, error) {
	t, err := s.backend.GetTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket %d: %w", id, err)
	}
	d := &Detail{Ticket: *t}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	run := func(what string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to load %s: %w", what, err)
					cancel()
				}
				mu.Unlock()
			}
		}()
	}

	account := t.AccountID
	run("comments", func() (err error) {
		d.Comments, err = s.backend.ListComments(ctx, ResourceType, id)
		return err
	})
	run("contacts", func() (err error) {
		d.Contacts, err = s.backend.ListContacts(ctx, account)
		return err
	})
	run("projects", func() error {
		projects, err := s.backend.ListProjects(ctx, account)
		if err != nil {
			return err
		}
		d.Projects = projects
		for _, p := range projects {
			ms, err := s.backend.ListMilestones(ctx, p.ID)
			if err != nil {
				return err
			}
			d.Milestones = append(d.Milestones, ms...)
		}
		return nil
	})
	run("articles", func() (err error) {
		d.Articles, err = s.backend.ListArticles(ctx, "")
		return err
	})
	run("techs", func() (err error) {
		d.Techs, err = s.backend.ListTechs(ctx)
		return err
	})
	run("assets", func() (err error) {
		d.Assets, err = s.backend.ListAssets(ctx, account)
		return err
	})
	run("time entries", func() (err error) {
		d.Time, err = s.backend.ListTimeEntries(ctx, id)
		return err
	})
	run("materials", func() (err error) {
		d.Materials, err = s.backend.ListMaterials(ctx, id)
		return err
	})
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return d, nil
}

// CanResolve reports whether the resolve action is offered for t.
func CanResolve(t model.Ticket) bool {
	return !t.IsResolved()
}

// ResolveRequest carries the resolution text and, when the resolution was
// promoted from a comment, that comment's id.
type ResolveRequest struct {
	Resolution string
	CommentID  *int64
}

// PinResolution prefills a resolve request from a comment.
func PinResolution(c model.Comment) ResolveRequest {
	id := c.ID
	return ResolveRequest{Resolution: c.Body, CommentID: &id}
}

// Resolve transitions t to resolved with a single PUT. On error nothing has
// changed locally and the caller keeps showing the unresolved ticket.
func (s *Service) Resolve(ctx context.Context, t model.Ticket, req ResolveRequest) (*model.Ticket, error) {
	if !CanResolve(t) {
		return nil, ErrAlreadyResolved
	}
	text := strings.TrimSpace(req.Resolution)
	if text == "" {
		return nil, ErrEmptyResolution
	}

	status := model.TicketStatusResolved
	closed := s.now().UTC()
	update := model.TicketUpdate{
		Status:              &status,
		Resolution:          &text,
		ClosedAt:            &closed,
		ResolutionCommentID: req.CommentID,
	}
	updated, err := s.backend.UpdateTicket(ctx, t.ID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ticket %d: %w", t.ID, err)
	}
	return updated, nil
}

// Update applies a metadata change (status, priority, assignee, links).
func (s *Service) Update(ctx context.Context, id int64, update model.TicketUpdate) (*model.Ticket, error) {
	if update.Status != nil && !update.Status.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", *update.Status)
	}
	if update.Priority != nil && !update.Priority.IsValid() {
		return nil, fmt.Errorf("invalid priority: %s", *update.Priority)
	}
	t, err := s.backend.UpdateTicket(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket %d: %w", id, err)
	}
	return t, nil
}

// Comment posts a comment on the ticket.
func (s *Service) Comment(ctx context.Context, ticketID int64, body string, v model.Visibility) (*model.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	if !v.IsValid() {
		return nil, fmt.Errorf("invalid visibility: %s (use internal or public)", v)
	}
	c, err := s.backend.CreateComment(ctx, model.NewComment{
		Body:         body,
		Visibility:   v,
		ResourceType: ResourceType,
		ResourceID:   ticketID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return c, nil
}

// LinkMentionedArticles adds articles mentioned in body (see
// textedit.ArticleMention) to the ticket's article list. It makes no request
// when every mentioned article is already linked.
func (s *Service) LinkMentionedArticles(ctx context.Context, t model.Ticket, body string) (*model.Ticket, error) {
	ids := ArticleIDs(t)
	before := len(ids)
	for _, id := range textedit.MentionedArticles(body) {
		ids = WithID(ids, id)
	}
	if len(ids) == before {
		return &t, nil
	}
	updated, err := s.backend.UpdateTicket(ctx, t.ID, model.TicketUpdate{ArticleIDs: &ids})
	if err != nil {
		return nil, fmt.Errorf("failed to link mentioned articles: %w", err)
	}
	return updated, nil
}

// ToggleVisibility flips a comment between internal and public.
func (s *Service) ToggleVisibility(ctx context.Context, c model.Comment) (*model.Comment, error) {
	updated, err := s.backend.SetCommentVisibility(ctx, c.ID, c.Visibility.Toggle())
	if err != nil {
		return nil, fmt.Errorf("failed to change visibility of comment %d: %w", c.ID, err)
	}
	return updated, nil
}

// GenerateInvoice invoices the ticket's unbilled time and materials. It
// refuses when there is nothing to bill.
func (s *Service) GenerateInvoice(ctx context.Context, d *Detail) (*model.Invoice, error) {
	if d.Billing().Total() <= 0 {
		return nil, fmt.Errorf("ticket %d has no unbilled time or materials", d.Ticket.ID)
	}
	inv, err := s.backend.GenerateInvoice(ctx, d.Ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice: %w", err)
	}
	return inv, nil
}
