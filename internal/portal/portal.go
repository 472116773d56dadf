// Package portal serves the client-facing portal views. An admin can view
// the portal as a client account by impersonating it.
//
// A 403 from any portal route ends the session: the stored token is
// cleared and ErrLoggedOut is returned.
package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/baiirun/mspdesk/internal/api"
	"github.com/baiirun/mspdesk/internal/model"
)

// ErrLoggedOut is returned after a forbidden portal response cleared the
// session.
var ErrLoggedOut = errors.New("portal access denied; you have been logged out")

type Backend interface {
	PortalDashboard(ctx context.Context, impersonate int64) (*model.PortalDashboard, error)
	PortalTickets(ctx context.Context, impersonate int64) ([]model.Ticket, error)
	PortalInvoices(ctx context.Context, impersonate int64) ([]model.Invoice, error)
	PortalInvoicePDF(ctx context.Context, invoiceID, impersonate int64) (*api.Blob, error)
}

// Sessions is where the console keeps its token.
type Sessions interface {
	ClearSession() error
}

type Service struct {
	backend     Backend
	sessions    Sessions
	impersonate int64
	log         zerolog.Logger
}

// NewService returns a portal view. impersonate is the account to view as,
// or 0 for the caller's own account.
func NewService(backend Backend, sessions Sessions, impersonate int64, log zerolog.Logger) *Service {
	return &Service{backend: backend, sessions: sessions, impersonate: impersonate, log: log}
}

// Impersonating returns the impersonated account id, or 0.
func (s *Service) Impersonating() int64 {
	return s.impersonate
}

func (s *Service) Dashboard(ctx context.Context) (*model.PortalDashboard, error) {
	d, err := s.backend.PortalDashboard(ctx, s.impersonate)
	return d, s.check(err)
}

func (s *Service) Tickets(ctx context.Context) ([]model.Ticket, error) {
	t, err := s.backend.PortalTickets(ctx, s.impersonate)
	return t, s.check(err)
}

func (s *Service) Invoices(ctx context.Context) ([]model.Invoice, error) {
	inv, err := s.backend.PortalInvoices(ctx, s.impersonate)
	return inv, s.check(err)
}

func (s *Service) InvoicePDF(ctx context.Context, invoiceID int64) (*api.Blob, error) {
	b, err := s.backend.PortalInvoicePDF(ctx, invoiceID, s.impersonate)
	return b, s.check(err)
}

// check turns a 403 into a forced logout.
func (s *Service) check(err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, api.ErrForbidden) {
		return err
	}
	s.log.Warn().Int64("impersonate", s.impersonate).Msg("portal returned 403, clearing session")
	if clearErr := s.sessions.ClearSession(); clearErr != nil {
		return fmt.Errorf("%w (and clearing the session failed: %v)", ErrLoggedOut, clearErr)
	}
	return ErrLoggedOut
}
