package model

import "time"

type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "pending"
	MilestoneActive    MilestoneStatus = "active"
	MilestoneCompleted MilestoneStatus = "completed"
)

func (s MilestoneStatus) IsValid() bool {
	switch s {
	case MilestonePending, MilestoneActive, MilestoneCompleted:
		return true
	}
	return false
}

// Milestone is a billable checkpoint within a Project.
type Milestone struct {
	ID             int64           `json:"id"`
	ProjectID      int64           `json:"project_id"`
	Name           string          `json:"name"`
	Sequence       int             `json:"sequence"`
	BillableAmount float64         `json:"billable_amount"`
	Status         MilestoneStatus `json:"status"`
	InvoiceID      *int64          `json:"invoice_id,omitempty"`
}

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
	InvoiceVoid  InvoiceStatus = "void"
)

type Invoice struct {
	ID          int64         `json:"id"`
	Number      string        `json:"number"`
	AccountID   int64         `json:"account_id"`
	AccountName string        `json:"account_name,omitempty"`
	Status      InvoiceStatus `json:"status"`
	Total       float64       `json:"total"`
	IssuedAt    *time.Time    `json:"issued_at,omitempty"`
	DueAt       *time.Time    `json:"due_at,omitempty"`
}

type TimeEntry struct {
	ID          int64     `json:"id"`
	TicketID    int64     `json:"ticket_id"`
	TechID      int64     `json:"tech_id"`
	TechName    string    `json:"tech_name,omitempty"`
	Description string    `json:"description"`
	Hours       float64   `json:"hours"`
	Rate        float64   `json:"rate"`
	Billable    bool      `json:"billable"`
	InvoiceID   *int64    `json:"invoice_id,omitempty"`
	WorkedAt    time.Time `json:"worked_at"`
}

// Amount is hours times rate, regardless of billable flag.
func (e TimeEntry) Amount() float64 {
	return e.Hours * e.Rate
}

type MaterialEntry struct {
	ID          int64   `json:"id"`
	TicketID    int64   `json:"ticket_id"`
	ProductID   int64   `json:"product_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	InvoiceID   *int64  `json:"invoice_id,omitempty"`
}

func (e MaterialEntry) Amount() float64 {
	return e.Quantity * e.UnitPrice
}

// BillingSummary totals what is still unbilled on a ticket.
type BillingSummary struct {
	UnbilledHours  float64
	UnbilledLabour float64
	UnbilledParts  float64
}

// Total is labour plus materials.
func (s BillingSummary) Total() float64 {
	return s.UnbilledLabour + s.UnbilledParts
}

// SummarizeBilling computes unbilled totals. Non-billable time and entries
// already attached to an invoice are excluded.
func SummarizeBilling(entries []TimeEntry, materials []MaterialEntry) BillingSummary {
	var s BillingSummary
	for _, e := range entries {
		if !e.Billable || e.InvoiceID != nil {
			continue
		}
		s.UnbilledHours += e.Hours
		s.UnbilledLabour += e.Amount()
	}
	for _, m := range materials {
		if m.InvoiceID != nil {
			continue
		}
		s.UnbilledParts += m.Amount()
	}
	return s
}

type Product struct {
	ID        int64   `json:"id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Taxable   bool    `json:"taxable"`
}
