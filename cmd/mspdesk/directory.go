package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/baiirun/mspdesk/internal/api"
	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/store"
)

// Entity types recorded in the visit history.
const (
	ticketHistory  = "ticket"
	accountHistory = "account"
	articleHistory = "article"
)

func (c *cli) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Client accounts",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts, recently viewed first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			accounts, err := client.ListAccounts(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			recent, err := c.db.RecentIDs(accountHistory)
			if err != nil {
				return err
			}
			accounts = store.SortByRecency(accounts, recent, func(a model.Account) int64 { return a.ID })
			if accounts == nil {
				accounts = []model.Account{}
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, accounts, accountTable(accounts))
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "search by name or domain")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			a, err := client.GetAccount(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get account %d: %w", id, err)
			}
			if err := c.db.RecordVisit(accountHistory, store.Visit{ID: a.ID, Label: a.Name}); err != nil {
				c.log.Warn().Err(err).Int64("account", id).Msg("failed to record visit")
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, a, accountTable([]model.Account{*a}))
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func accountTable(accounts []model.Account) table {
	t := table{headers: []string{"ID", "NAME", "DOMAIN", "PHONE", "ACTIVE", "CREATED"}}
	for _, a := range accounts {
		t.add(strconv.FormatInt(a.ID, 10), a.Name, orDash(a.Domain), orDash(a.Phone), yesNo(a.Active), ago(a.CreatedAt))
	}
	return t
}

func (c *cli) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact"},
		Short:   "Account contacts",
	}
	var accountID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			contacts, err := client.ListContacts(cmd.Context(), accountID)
			if err != nil {
				return fmt.Errorf("failed to list contacts: %w", err)
			}
			if contacts == nil {
				contacts = []model.Contact{}
			}
			t := table{headers: []string{"ID", "ACCOUNT", "NAME", "EMAIL", "PHONE"}}
			for _, ct := range contacts {
				t.add(strconv.FormatInt(ct.ID, 10), strconv.FormatInt(ct.AccountID, 10), ct.Name, ct.Email, orDash(ct.Phone))
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, contacts, t)
		},
	}
	list.Flags().Int64Var(&accountID, "account", 0, "only contacts of this account")
	cmd.AddCommand(list)
	return cmd
}

func (c *cli) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Product catalogue",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			products, err := client.ListProducts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}
			if products == nil {
				products = []model.Product{}
			}
			t := table{headers: []string{"ID", "SKU", "NAME", "PRICE", "TAXABLE"}}
			for _, p := range products {
				t.add(strconv.FormatInt(p.ID, 10), orDash(p.SKU), p.Name, money(p.UnitPrice), yesNo(p.Taxable))
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, products, t)
		},
	})
	return cmd
}

func (c *cli) invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"invoice"},
		Short:   "Invoices",
	}

	var accountID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			invoices, err := client.ListInvoices(cmd.Context(), accountID)
			if err != nil {
				return fmt.Errorf("failed to list invoices: %w", err)
			}
			if invoices == nil {
				invoices = []model.Invoice{}
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, invoices, invoiceTable(invoices))
		},
	}
	list.Flags().Int64Var(&accountID, "account", 0, "only invoices of this account")

	cmd.AddCommand(list, c.downloadCmd("download <id>", "Download an invoice PDF", (*api.Client).InvoicePDF))
	return cmd
}

// downloadCmd saves a PDF fetched by fetch into --dir (default: the
// configured download_dir).
func (c *cli) downloadCmd(use, short string, fetch func(*api.Client, context.Context, int64) (*api.Blob, error)) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			blob, err := fetch(client, cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to download: %w", err)
			}
			return c.save(cmd, blob, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to save into (default download_dir)")
	return cmd
}

func (c *cli) save(cmd *cobra.Command, blob *api.Blob, dir string) error {
	if dir == "" {
		dir = c.cfg.DownloadDir
	}
	path, err := blob.SaveTo(dir)
	if err != nil {
		return err
	}
	c.log.Debug().Str("path", path).Int("bytes", len(blob.Data)).Msg("saved download")
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	return nil
}

func (c *cli) articlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "articles",
		Aliases: []string{"article", "kb"},
		Short:   "Knowledge-base articles",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			articles, err := client.ListArticles(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("failed to list articles: %w", err)
			}
			if articles == nil {
				articles = []model.Article{}
			}
			t := table{headers: []string{"ID", "TITLE", "CATEGORY", "PUBLIC", "UPDATED"}}
			for _, a := range articles {
				t.add(strconv.FormatInt(a.ID, 10), truncate(a.Title, 60), orDash(a.Category), yesNo(a.Public), ago(a.UpdatedAt))
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, articles, t)
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "search titles and bodies")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an article rendered for the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			a, err := client.GetArticle(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get article %d: %w", id, err)
			}
			if err := c.db.RecordVisit(articleHistory, store.Visit{ID: a.ID, Label: a.Title}); err != nil {
				c.log.Warn().Err(err).Int64("article", id).Msg("failed to record visit")
			}
			out := cmd.OutOrStdout()
			if c.cfg.Output != "table" {
				return emit(out, c.cfg.Output, a, table{})
			}
			fmt.Fprintf(out, "KB-%d %s\n\n%s\n", a.ID, a.Title, richText(out, a.Format, a.Body))
			return nil
		},
	}

	cmd.AddCommand(list, show, c.downloadCmd("download <id>", "Download an article as PDF", (*api.Client).ArticlePDF))
	return cmd
}
