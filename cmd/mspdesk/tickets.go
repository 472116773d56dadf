package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/richtext"
	"github.com/baiirun/mspdesk/internal/store"
	"github.com/baiirun/mspdesk/internal/ticket"
)

// ticketView is the json/yaml shape of 'tickets show'.
type ticketView struct {
	model.Ticket
	TechName  string          `json:"tech_name,omitempty"`
	Milestone string          `json:"milestone,omitempty"`
	Comments  []model.Comment `json:"comments"`
	Billing   billingView     `json:"billing"`
}

type billingView struct {
	UnbilledHours  float64 `json:"unbilled_hours"`
	UnbilledLabour float64 `json:"unbilled_labour"`
	UnbilledParts  float64 `json:"unbilled_parts"`
	UnbilledTotal  float64 `json:"unbilled_total"`
}

func newTicketView(d *ticket.Detail) ticketView {
	b := d.Billing()
	v := ticketView{
		Ticket:   d.Ticket,
		TechName: d.TechName(),
		Comments: d.Comments,
		Billing: billingView{
			UnbilledHours:  b.UnbilledHours,
			UnbilledLabour: b.UnbilledLabour,
			UnbilledParts:  b.UnbilledParts,
			UnbilledTotal:  b.Total(),
		},
	}
	if v.Comments == nil {
		v.Comments = []model.Comment{}
	}
	if m := d.Milestone(); m != nil {
		v.Milestone = m.Name
	}
	return v
}

// terminalWidth returns the width of w when it is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// richText renders a markdown or html body for w: styled on a terminal,
// plain wrapped text otherwise.
func richText(w io.Writer, format, body string) string {
	width := terminalWidth(w)
	if width > 0 {
		return richtext.Render(format, body, min(width, 100))
	}
	if format == "html" {
		if text, err := richtext.HTMLToText(body, 80); err == nil {
			return text
		}
	}
	return richtext.Plain(body, 80)
}

func (c *cli) ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"ticket", "t"},
		Short:   "List, view and work tickets",
	}
	cmd.AddCommand(
		c.ticketsListCmd(),
		c.ticketsShowCmd(),
		c.ticketsCreateCmd(),
		c.ticketsUpdateCmd(),
		c.ticketsResolveCmd(),
		c.ticketsCommentCmd(),
		c.ticketsCommentsCmd(),
		c.ticketsPinCmd(),
		c.ticketsInvoiceCmd(),
		c.ticketsDeleteCmd(),
	)
	return cmd
}

func ticketID(t model.Ticket) int64 { return t.ID }

func (c *cli) ticketsListCmd() *cobra.Command {
	var filter model.TicketFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets, recently viewed first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			tickets, err := client.ListTickets(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list tickets: %w", err)
			}
			recent, err := c.db.RecentIDs(ticketHistory)
			if err != nil {
				return err
			}
			tickets = store.SortByRecency(tickets, recent, ticketID)
			if tickets == nil {
				tickets = []model.Ticket{}
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, tickets, ticketTable(tickets))
		},
	}
	f := cmd.Flags()
	f.Var(statusFlag(&filter.Status), "status", "only tickets with this status")
	f.Int64Var(&filter.AccountID, "account", 0, "only tickets of this account")
	f.Int64Var(&filter.TechID, "tech", 0, "only tickets assigned to this tech")
	f.StringVarP(&filter.Query, "query", "q", "", "search subject and description")
	return cmd
}

func (c *cli) ticketsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a ticket with its comments and billing",
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
			d, err := ticket.NewService(client).LoadDetail(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := c.db.RecordVisit(ticketHistory, store.Visit{ID: id, Label: d.Ticket.Subject}); err != nil {
				c.log.Warn().Err(err).Int64("ticket", id).Msg("failed to record visit")
			}

			out := cmd.OutOrStdout()
			if c.cfg.Output != "table" {
				return emit(out, c.cfg.Output, newTicketView(d), table{})
			}
			printTicket(out, d)
			return nil
		},
	}
}

func printTicket(w io.Writer, d *ticket.Detail) {
	t := d.Ticket
	fmt.Fprintf(w, "#%d %s\n\n", t.ID, t.Subject)
	row := func(label, value string) {
		fmt.Fprintf(w, "  %-11s %s\n", label+":", value)
	}
	row("Status", string(t.Status))
	row("Priority", string(t.Priority))
	row("Type", orDash(t.TicketType))
	row("Account", orDash(t.AccountName))
	row("Assigned", orDash(d.TechName()))
	if m := d.Milestone(); m != nil {
		row("Milestone", fmt.Sprintf("%s (%s)", m.Name, m.Status))
	}
	row("Created", ago(t.CreatedAt))
	if t.ClosedAt != nil {
		row("Closed", ago(*t.ClosedAt))
	}

	if strings.TrimSpace(t.Description) != "" {
		fmt.Fprintf(w, "\n%s\n", richText(w, "markdown", t.Description))
	}
	if t.Resolution != nil {
		fmt.Fprintln(w, "\nResolution:")
		if rc := d.ResolutionComment(); rc != nil {
			fmt.Fprintf(w, "  (pinned from %s's comment #%d)\n", orDash(rc.AuthorName), rc.ID)
		}
		fmt.Fprintln(w, richText(w, "markdown", *t.Resolution))
	}

	if len(t.Contacts) > 0 {
		names := make([]string, len(t.Contacts))
		for i, ct := range t.Contacts {
			names[i] = ct.Name
		}
		fmt.Fprintf(w, "\nContacts: %s\n", strings.Join(names, ", "))
	}
	if len(t.Assets) > 0 {
		names := make([]string, len(t.Assets))
		for i, a := range t.Assets {
			names[i] = a.Name
		}
		fmt.Fprintf(w, "Assets: %s\n", strings.Join(names, ", "))
	}
	if len(t.Articles) > 0 {
		names := make([]string, len(t.Articles))
		for i, a := range t.Articles {
			names[i] = fmt.Sprintf("KB-%d %s", a.ID, a.Title)
		}
		fmt.Fprintf(w, "Articles: %s\n", strings.Join(names, ", "))
	}

	b := d.Billing()
	fmt.Fprintf(w, "\nUnbilled: %s h, labour %s, parts %s, total %s\n",
		strconv.FormatFloat(b.UnbilledHours, 'f', -1, 64), money(b.UnbilledLabour), money(b.UnbilledParts), money(b.Total()))

	fmt.Fprintf(w, "\nComments (%d)\n", len(d.Comments))
	for _, cm := range d.Comments {
		tag := strings.ToUpper(string(cm.Visibility))
		if t.ResolutionCommentID != nil && *t.ResolutionCommentID == cm.ID {
			tag += ", RESOLUTION"
		}
		fmt.Fprintf(w, "\n  #%d %s [%s] %s\n", cm.ID, orDash(cm.AuthorName), tag, ago(cm.CreatedAt))
		fmt.Fprintln(w, indent(richText(w, "markdown", cm.Body), "    "))
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

func (c *cli) ticketsCreateCmd() *cobra.Command {
	var in model.NewTicket
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(in.Subject) == "" {
				return fmt.Errorf("--subject is required")
			}
			if in.AccountID <= 0 {
				return fmt.Errorf("--account is required")
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			t, err := client.CreateTicket(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create ticket: %w", err)
			}
			c.log.Info().Int64("ticket", t.ID).Msg("ticket created")
			return emit(cmd.OutOrStdout(), c.cfg.Output, t, ticketTable([]model.Ticket{*t}))
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Subject, "subject", "", "ticket subject")
	f.StringVar(&in.Description, "description", "", "markdown description")
	f.Int64Var(&in.AccountID, "account", 0, "account id")
	f.Var(priorityFlag(&in.Priority, model.PriorityNormal), "priority", "low, normal, high or critical")
	f.StringVar(&in.TicketType, "type", "", "ticket type")
	return cmd
}

func (c *cli) ticketsUpdateCmd() *cobra.Command {
	var (
		status         model.TicketStatus
		priority       model.Priority
		subject        string
		assign         int64
		milestone      int64
		addContacts    []int64
		removeContacts []int64
		addAssets      []int64
		removeAssets   []int64
		addArticles    []int64
		removeArticles []int64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a ticket's status, priority, assignee or links",
		Long: `Change ticket metadata. Only the flags given are sent.

Resolving is not a status change here: use 'mspdesk tickets resolve', which
requires resolution text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			current, err := client.GetTicket(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load ticket %d: %w", id, err)
			}

			f := cmd.Flags()
			var u model.TicketUpdate
			if f.Changed("status") {
				if status == model.TicketStatusResolved {
					return fmt.Errorf("use 'mspdesk tickets resolve %d <resolution>' to resolve", id)
				}
				u.Status = &status
			}
			if f.Changed("priority") {
				u.Priority = &priority
			}
			if f.Changed("subject") {
				u.Subject = &subject
			}
			if f.Changed("assign") {
				u.AssignedTechID = ticket.Assign(assign).AssignedTechID
			}
			if f.Changed("milestone") {
				u.MilestoneID = ticket.SetMilestone(milestone).MilestoneID
			}
			u.ContactIDs = relink(ticket.ContactIDs(*current), addContacts, removeContacts)
			u.AssetIDs = relink(ticket.AssetIDs(*current), addAssets, removeAssets)
			u.ArticleIDs = relink(ticket.ArticleIDs(*current), addArticles, removeArticles)

			if u == (model.TicketUpdate{}) {
				return fmt.Errorf("nothing to update (see --help for the flags)")
			}
			t, err := ticket.NewService(client).Update(cmd.Context(), id, u)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, t, ticketTable([]model.Ticket{*t}))
		},
	}
	f := cmd.Flags()
	f.Var(statusFlag(&status), "status", "new, open, pending or qa")
	f.Var(priorityFlag(&priority, ""), "priority", "low, normal, high or critical")
	f.StringVar(&subject, "subject", "", "new subject")
	f.Int64Var(&assign, "assign", 0, "assign to this tech id")
	f.Int64Var(&milestone, "milestone", 0, "attach to this milestone id")
	f.Int64SliceVar(&addContacts, "add-contact", nil, "link contact ids")
	f.Int64SliceVar(&removeContacts, "remove-contact", nil, "unlink contact ids")
	f.Int64SliceVar(&addAssets, "add-asset", nil, "link asset ids")
	f.Int64SliceVar(&removeAssets, "remove-asset", nil, "unlink asset ids")
	f.Int64SliceVar(&addArticles, "add-article", nil, "link knowledge-base article ids")
	f.Int64SliceVar(&removeArticles, "remove-article", nil, "unlink knowledge-base article ids")
	return cmd
}

// relink applies additions and removals to ids, or returns nil when there
// are none so the field is left out of the update.
func relink(ids, add, remove []int64) *[]int64 {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}
	for _, id := range add {
		ids = ticket.WithID(ids, id)
	}
	for _, id := range remove {
		ids = ticket.WithoutID(ids, id)
	}
	return &ids
}

func (c *cli) ticketsResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id> <resolution...>",
		Short: "Resolve a ticket with resolution text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			t, err := client.GetTicket(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load ticket %d: %w", id, err)
			}
			req := ticket.ResolveRequest{Resolution: strings.Join(args[1:], " ")}
			resolved, err := ticket.NewService(client).Resolve(cmd.Context(), *t, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Resolved #%d\n", resolved.ID)
			return emit(cmd.OutOrStdout(), c.cfg.Output, resolved, ticketTable([]model.Ticket{*resolved}))
		},
	}
}

func (c *cli) ticketsPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <ticket-id> <comment-id>",
		Short: "Resolve a ticket using one of its comments as the resolution",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			t, err := client.GetTicket(ctx, ids[0])
			if err != nil {
				return fmt.Errorf("failed to load ticket %d: %w", ids[0], err)
			}
			comments, err := client.ListComments(ctx, ticket.ResourceType, t.ID)
			if err != nil {
				return fmt.Errorf("failed to list comments: %w", err)
			}
			var req *ticket.ResolveRequest
			for _, cm := range comments {
				if cm.ID == ids[1] {
					r := ticket.PinResolution(cm)
					req = &r
				}
			}
			if req == nil {
				return fmt.Errorf("comment %d is not on ticket %d", ids[1], t.ID)
			}
			resolved, err := ticket.NewService(client).Resolve(ctx, *t, *req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Resolved #%d from comment #%d\n", resolved.ID, ids[1])
			return emit(cmd.OutOrStdout(), c.cfg.Output, resolved, ticketTable([]model.Ticket{*resolved}))
		},
	}
}

func (c *cli) ticketsCommentCmd() *cobra.Command {
	var visibility model.Visibility
	cmd := &cobra.Command{
		Use:   "comment <id> <body...>",
		Short: "Add a comment to a ticket",
		Long: `Add a markdown comment. Comments are internal unless --visibility public.

Knowledge-base mentions written as [title](kb:ID) link the article to the ticket.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc := ticket.NewService(client)
			body := strings.Join(args[1:], " ")
			// The ticket is loaded first so a bad id fails before anything
			// is posted.
			t, err := client.GetTicket(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load ticket %d: %w", id, err)
			}
			cm, err := svc.Comment(ctx, id, body, visibility)
			if err != nil {
				return err
			}
			if _, err := svc.LinkMentionedArticles(ctx, *t, body); err != nil {
				c.log.Warn().Err(err).Int64("ticket", id).Msg("comment posted but mentioned articles were not linked")
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, cm, commentTable([]model.Comment{*cm}, nil))
		},
	}
	cmd.Flags().Var(visibilityFlag(&visibility), "visibility", "internal or public")
	return cmd
}

func (c *cli) ticketsCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comments <id>",
		Short: "List a ticket's comments",
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
			t, err := client.GetTicket(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load ticket %d: %w", id, err)
			}
			comments, err := client.ListComments(cmd.Context(), ticket.ResourceType, id)
			if err != nil {
				return fmt.Errorf("failed to list comments: %w", err)
			}
			if comments == nil {
				comments = []model.Comment{}
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, comments, commentTable(comments, t.ResolutionCommentID))
		},
	}
}

func (c *cli) ticketsInvoiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invoice <id>",
		Short: "Invoice a ticket's unbilled time and materials",
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
			svc := ticket.NewService(client)
			d, err := svc.LoadDetail(cmd.Context(), id)
			if err != nil {
				return err
			}
			inv, err := svc.GenerateInvoice(cmd.Context(), d)
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, inv, invoiceTable([]model.Invoice{*inv}))
		},
	}
}

func (c *cli) ticketsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ticket",
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
			if err := client.DeleteTicket(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete ticket %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}
}
