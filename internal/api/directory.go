package api

import (
	"context"
	"net/url"

	"github.com/baiirun/mspdesk/internal/model"
)

func (c *Client) ListAccounts(ctx context.Context, query string) ([]model.Account, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	var out []model.Account
	if err := c.get(ctx, "/accounts", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	var out model.Account
	if err := c.get(ctx, idPath("/accounts/%s", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListContacts returns contacts, scoped to an account when accountID != 0.
func (c *Client) ListContacts(ctx context.Context, accountID int64) ([]model.Contact, error) {
	q := url.Values{}
	setID(q, "account_id", accountID)
	var out []model.Contact
	if err := c.get(ctx, "/contacts", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTechs(ctx context.Context) ([]model.Tech, error) {
	var out []model.Tech
	if err := c.get(ctx, "/techs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAssets(ctx context.Context, accountID int64) ([]model.Asset, error) {
	q := url.Values{}
	setID(q, "account_id", accountID)
	var out []model.Asset
	if err := c.get(ctx, "/assets", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListProjects(ctx context.Context, accountID int64) ([]model.Project, error) {
	q := url.Values{}
	setID(q, "account_id", accountID)
	var out []model.Project
	if err := c.get(ctx, "/projects", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListMilestones(ctx context.Context, projectID int64) ([]model.Milestone, error) {
	var out []model.Milestone
	if err := c.get(ctx, idPath("/projects/%s/milestones", projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := c.get(ctx, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListInvoices(ctx context.Context, accountID int64) ([]model.Invoice, error) {
	q := url.Values{}
	setID(q, "account_id", accountID)
	var out []model.Invoice
	if err := c.get(ctx, "/invoices", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListArticles(ctx context.Context, query string) ([]model.Article, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	var out []model.Article
	if err := c.get(ctx, "/articles", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetArticle(ctx context.Context, id int64) (*model.Article, error) {
	var out model.Article
	if err := c.get(ctx, idPath("/articles/%s", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
