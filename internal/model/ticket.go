// Package model holds the records exchanged with the MSP backend.
//
// Every type mirrors a backend response 1:1. The console never persists
// derived state from these records; see package store for the few local
// preferences that are kept.
package model

import "time"

type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "new"
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusQA       TicketStatus = "qa"
	TicketStatusResolved TicketStatus = "resolved"
)

// TicketStatuses lists ticket statuses in workflow order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusOpen,
	TicketStatusPending,
	TicketStatusQA,
	TicketStatusResolved,
}

// IsValid returns true if the status is a known ticket status.
func (s TicketStatus) IsValid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities lists priorities from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical}

// IsValid returns true if the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Ticket struct {
	ID                  int64        `json:"id"`
	Subject             string       `json:"subject"`
	Description         string       `json:"description"`
	Status              TicketStatus `json:"status"`
	Priority            Priority     `json:"priority"`
	TicketType          string       `json:"ticket_type"`
	AccountID           int64        `json:"account_id"`
	AccountName         string       `json:"account_name,omitempty"`
	MilestoneID         *int64       `json:"milestone_id,omitempty"`
	AssignedTechID      *int64       `json:"assigned_tech_id,omitempty"`
	AssignedTechName    string       `json:"assigned_tech_name,omitempty"`
	Contacts            []Contact    `json:"contacts,omitempty"`
	Assets              []Asset      `json:"assets,omitempty"`
	Articles            []Article    `json:"articles,omitempty"`
	Resolution          *string      `json:"resolution,omitempty"`
	ResolutionCommentID *int64       `json:"resolution_comment_id,omitempty"`
	ClosedAt            *time.Time   `json:"closed_at,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// IsResolved reports whether the ticket reached its terminal state.
func (t Ticket) IsResolved() bool {
	return t.Status == TicketStatusResolved
}

// TicketUpdate is the body of PUT /tickets/{id}. Nil fields are left
// unchanged by the backend.
type TicketUpdate struct {
	Subject             *string       `json:"subject,omitempty"`
	Description         *string       `json:"description,omitempty"`
	Status              *TicketStatus `json:"status,omitempty"`
	Priority            *Priority     `json:"priority,omitempty"`
	TicketType          *string       `json:"ticket_type,omitempty"`
	MilestoneID         *int64        `json:"milestone_id,omitempty"`
	AssignedTechID      *int64        `json:"assigned_tech_id,omitempty"`
	ContactIDs          *[]int64      `json:"contact_ids,omitempty"`
	AssetIDs            *[]int64      `json:"asset_ids,omitempty"`
	ArticleIDs          *[]int64      `json:"article_ids,omitempty"`
	Resolution          *string       `json:"resolution,omitempty"`
	ResolutionCommentID *int64        `json:"resolution_comment_id,omitempty"`
	ClosedAt            *time.Time    `json:"closed_at,omitempty"`
}

// NewTicket is the body of POST /tickets.
type NewTicket struct {
	Subject     string   `json:"subject"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	TicketType  string   `json:"ticket_type,omitempty"`
	AccountID   int64    `json:"account_id"`
}

// TicketFilter narrows GET /tickets.
type TicketFilter struct {
	Status    TicketStatus
	AccountID int64
	TechID    int64
	Query     string
}

type Visibility string

const (
	VisibilityInternal Visibility = "internal"
	VisibilityPublic   Visibility = "public"
)

// IsValid returns true if the visibility is internal or public.
func (v Visibility) IsValid() bool {
	return v == VisibilityInternal || v == VisibilityPublic
}

// Toggle flips between internal and public.
func (v Visibility) Toggle() Visibility {
	if v == VisibilityPublic {
		return VisibilityInternal
	}
	return VisibilityPublic
}

type Comment struct {
	ID           int64      `json:"id"`
	Body         string     `json:"body"`
	Visibility   Visibility `json:"visibility"`
	AuthorName   string     `json:"author_name"`
	ResourceType string     `json:"resource_type"`
	ResourceID   int64      `json:"resource_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewComment is the body of POST /comments.
type NewComment struct {
	Body         string     `json:"body"`
	Visibility   Visibility `json:"visibility"`
	ResourceType string     `json:"resource_type"`
	ResourceID   int64      `json:"resource_id"`
}
