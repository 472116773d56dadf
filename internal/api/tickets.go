package api

import (
	"context"
	"net/url"

	"github.com/baiirun/mspdesk/internal/model"
)

// ListTickets returns tickets matching filter.
func (c *Client) ListTickets(ctx context.Context, filter model.TicketFilter) ([]model.Ticket, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	setID(q, "account_id", filter.AccountID)
	setID(q, "assigned_tech_id", filter.TechID)
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	var out []model.Ticket
	if err := c.get(ctx, "/tickets", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTicket(ctx context.Context, id int64) (*model.Ticket, error) {
	var t model.Ticket
	if err := c.get(ctx, idPath("/tickets/%s", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CreateTicket(ctx context.Context, in model.NewTicket) (*model.Ticket, error) {
	var t model.Ticket
	if err := c.post(ctx, "/tickets", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTicket sends PUT /tickets/{id} and returns the ticket as stored.
func (c *Client) UpdateTicket(ctx context.Context, id int64, update model.TicketUpdate) (*model.Ticket, error) {
	var t model.Ticket
	if err := c.put(ctx, idPath("/tickets/%s", id), update, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTicket(ctx context.Context, id int64) error {
	return c.delete(ctx, idPath("/tickets/%s", id))
}

func (c *Client) ListComments(ctx context.Context, resourceType string, resourceID int64) ([]model.Comment, error) {
	q := url.Values{}
	q.Set("resource_type", resourceType)
	setID(q, "resource_id", resourceID)
	var out []model.Comment
	if err := c.get(ctx, "/comments", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, in model.NewComment) (*model.Comment, error) {
	var out model.Comment
	if err := c.post(ctx, "/comments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetCommentVisibility flips a comment between internal and public.
func (c *Client) SetCommentVisibility(ctx context.Context, id int64, v model.Visibility) (*model.Comment, error) {
	var out model.Comment
	body := map[string]model.Visibility{"visibility": v}
	if err := c.put(ctx, idPath("/comments/%s", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTimeEntries(ctx context.Context, ticketID int64) ([]model.TimeEntry, error) {
	var out []model.TimeEntry
	if err := c.get(ctx, idPath("/tickets/%s/time_entries", ticketID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMaterials(ctx context.Context, ticketID int64) ([]model.MaterialEntry, error) {
	var out []model.MaterialEntry
	if err := c.get(ctx, idPath("/tickets/%s/materials", ticketID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateInvoice asks the backend to invoice the ticket's unbilled time
// and materials.
func (c *Client) GenerateInvoice(ctx context.Context, ticketID int64) (*model.Invoice, error) {
	var out model.Invoice
	if err := c.post(ctx, idPath("/tickets/%s/invoice", ticketID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
