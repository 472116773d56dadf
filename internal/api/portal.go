package api

import (
	"context"
	"net/url"

	"github.com/baiirun/mspdesk/internal/model"
)

// impersonation threads the impersonate query parameter through portal
// routes. Zero means the caller's own account.
func impersonation(accountID int64) url.Values {
	q := url.Values{}
	setID(q, "impersonate", accountID)
	return q
}

func (c *Client) PortalDashboard(ctx context.Context, impersonate int64) (*model.PortalDashboard, error) {
	var out model.PortalDashboard
	if err := c.get(ctx, "/portal/dashboard", impersonation(impersonate), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PortalTickets(ctx context.Context, impersonate int64) ([]model.Ticket, error) {
	var out []model.Ticket
	if err := c.get(ctx, "/portal/tickets", impersonation(impersonate), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PortalInvoices(ctx context.Context, impersonate int64) ([]model.Invoice, error) {
	var out []model.Invoice
	if err := c.get(ctx, "/portal/invoices", impersonation(impersonate), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PortalInvoicePDF downloads an invoice through the portal route.
func (c *Client) PortalInvoicePDF(ctx context.Context, invoiceID, impersonate int64) (*Blob, error) {
	return c.download(ctx, idPath("/portal/invoices/%s/pdf", invoiceID), impersonation(impersonate), idPath("invoice-%s.pdf", invoiceID))
}
