package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/portal"
)

func (c *cli) portalCmd() *cobra.Command {
	var impersonate int64
	cmd := &cobra.Command{
		Use:   "portal",
		Short: "The client portal, optionally viewed as another account",
		Long: `Views of the client-facing portal. Admins can pass --impersonate ACCOUNT_ID
to see the portal as that account.

A 403 from the portal ends the session: the saved token is removed and you
have to log in again.`,
	}
	cmd.PersistentFlags().Int64Var(&impersonate, "impersonate", 0, "view the portal as this account id")

	service := func() (*portal.Service, error) {
		client, err := c.client()
		if err != nil {
			return nil, err
		}
		return portal.NewService(client, c.db, impersonate, c.log), nil
	}

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the portal landing page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service()
			if err != nil {
				return err
			}
			d, err := svc.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.cfg.Output != "table" {
				return emit(out, c.cfg.Output, d, table{})
			}
			fmt.Fprintf(out, "%s (account %d)\n", d.AccountName, d.AccountID)
			if svc.Impersonating() != 0 {
				fmt.Fprintln(out, "  viewing as an admin impersonating this account")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Open tickets:     %d\n", d.OpenTickets)
			fmt.Fprintf(out, "  Unpaid invoices:  %d\n", d.UnpaidInvoices)
			fmt.Fprintf(out, "  Balance due:      %s\n", money(d.BalanceDue))
			if len(d.RecentTickets) > 0 {
				fmt.Fprintln(out, "\nRecent tickets")
				if err := emit(out, "table", nil, ticketTable(d.RecentTickets)); err != nil {
					return err
				}
			}
			if len(d.RecentInvoices) > 0 {
				fmt.Fprintln(out, "\nRecent invoices")
				if err := emit(out, "table", nil, invoiceTable(d.RecentInvoices)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	tickets := &cobra.Command{
		Use:   "tickets",
		Short: "List the account's tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service()
			if err != nil {
				return err
			}
			list, err := svc.Tickets(cmd.Context())
			if err != nil {
				return err
			}
			if list == nil {
				list = []model.Ticket{}
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, list, ticketTable(list))
		},
	}

	invoices := &cobra.Command{
		Use:   "invoices",
		Short: "List the account's invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service()
			if err != nil {
				return err
			}
			list, err := svc.Invoices(cmd.Context())
			if err != nil {
				return err
			}
			if list == nil {
				list = []model.Invoice{}
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, list, invoiceTable(list))
		},
	}

	var dir string
	download := &cobra.Command{
		Use:   "download <invoice-id>",
		Short: "Download an invoice PDF through the portal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := service()
			if err != nil {
				return err
			}
			blob, err := svc.InvoicePDF(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.save(cmd, blob, dir)
		},
	}
	download.Flags().StringVar(&dir, "dir", "", "directory to save into (default download_dir)")

	cmd.AddCommand(dashboard, tickets, invoices, download)
	return cmd
}
