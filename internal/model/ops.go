package model

import (
	"encoding/json"
	"time"
)

type Campaign struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Subject     string     `json:"subject,omitempty"`
	TargetCount int        `json:"target_count"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

type CampaignTarget struct {
	ID         int64  `json:"id"`
	CampaignID int64  `json:"campaign_id"`
	ContactID  int64  `json:"contact_id"`
	Email      string `json:"email"`
	Status     string `json:"status"`
}

// AutomationRule is a backend-defined event to action mapping. The console
// manages rules but never executes them.
type AutomationRule struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Event      string          `json:"event"`
	Action     string          `json:"action"`
	Conditions json.RawMessage `json:"conditions,omitempty"`
	Enabled    bool            `json:"enabled"`
}

type AutomationLog struct {
	ID        int64     `json:"id"`
	RuleID    int64     `json:"rule_id"`
	RuleName  string    `json:"rule_name,omitempty"`
	Outcome   string    `json:"outcome"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type TemplateItem struct {
	ID        int64   `json:"id"`
	ProductID *int64  `json:"product_id,omitempty"`
	Label     string  `json:"label"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type TemplateSection struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Items []TemplateItem `json:"items"`
}

type Template struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Kind     string            `json:"kind"`
	Sections []TemplateSection `json:"sections,omitempty"`
}

// TemplateApply is the body of POST /templates/{id}/apply.
type TemplateApply struct {
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
}

// PortalDashboard is the landing view of the client portal.
type PortalDashboard struct {
	AccountID      int64     `json:"account_id"`
	AccountName    string    `json:"account_name"`
	BrandColor     string    `json:"brand_color,omitempty"`
	OpenTickets    int       `json:"open_tickets"`
	UnpaidInvoices int       `json:"unpaid_invoices"`
	BalanceDue     float64   `json:"balance_due"`
	RecentTickets  []Ticket  `json:"recent_tickets,omitempty"`
	RecentInvoices []Invoice `json:"recent_invoices,omitempty"`
}
