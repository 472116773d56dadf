package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/baiirun/mspdesk/internal/model"
	"github.com/baiirun/mspdesk/internal/richtext"
	"github.com/baiirun/mspdesk/internal/ticket"
)

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func field(theme Theme, name, value string) string {
	if value == "" {
		value = theme.faint().Render("-")
	}
	return theme.label().Render(fmt.Sprintf("%-11s", name)) + " " + value
}

// overviewPane renders ticket metadata, description, resolution and the
// linked contacts, assets and articles.
func overviewPane(theme Theme, d *ticket.Detail, width int) string {
	t := d.Ticket
	var b strings.Builder

	prio := lipgloss.NewStyle().Foreground(theme.PriorityColor(t.Priority)).Render(string(t.Priority))
	lines := []string{
		field(theme, "Status", theme.StatusBadge(string(t.Status))),
		field(theme, "Priority", prio),
		field(theme, "Type", t.TicketType),
		field(theme, "Account", t.AccountName),
		field(theme, "Assigned", d.TechName()),
	}
	if ms := d.Milestone(); ms != nil {
		lines = append(lines, field(theme, "Milestone", ms.Name+"  "+theme.StatusBadge(string(ms.Status))))
	} else {
		lines = append(lines, field(theme, "Milestone", ""))
	}
	lines = append(lines, field(theme, "Created", ago(t.CreatedAt)))
	if t.ClosedAt != nil {
		lines = append(lines, field(theme, "Closed", ago(*t.ClosedAt)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")

	b.WriteString(theme.header().Render("Description"))
	b.WriteString("\n")
	if strings.TrimSpace(t.Description) == "" {
		b.WriteString(theme.faint().Render("No description."))
	} else {
		b.WriteString(richtext.Markdown(t.Description, width))
	}
	b.WriteString("\n")

	if t.Resolution != nil {
		b.WriteString("\n")
		heading := "Resolution"
		if c := d.ResolutionComment(); c != nil {
			heading += theme.faint().Render(fmt.Sprintf("  pinned from %s's comment", c.AuthorName))
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.SuccessText).Render(heading))
		b.WriteString("\n")
		b.WriteString(richtext.Markdown(*t.Resolution, width))
		b.WriteString("\n")
	}

	section := func(title string, names []string) {
		b.WriteString("\n")
		b.WriteString(theme.header().Render(fmt.Sprintf("%s (%d)", title, len(names))))
		b.WriteString("\n")
		if len(names) == 0 {
			b.WriteString(theme.faint().Render("none"))
			b.WriteString("\n")
			return
		}
		for _, n := range names {
			b.WriteString("  • " + n + "\n")
		}
	}
	var contacts, assets, articles []string
	for _, c := range t.Contacts {
		contacts = append(contacts, c.Name+theme.faint().Render(" <"+c.Email+">"))
	}
	for _, a := range t.Assets {
		assets = append(assets, a.Name+theme.faint().Render(" "+a.AssetType))
	}
	for _, a := range t.Articles {
		articles = append(articles, fmt.Sprintf("%s %s", a.Title, theme.faint().Render(fmt.Sprintf("KB-%d", a.ID))))
	}
	section("Contacts", contacts)
	section("Assets", assets)
	section("Articles", articles)

	return strings.TrimRight(b.String(), "\n")
}

// billingPane renders time, materials and the unbilled totals.
func billingPane(theme Theme, d *ticket.Detail, width int) string {
	var b strings.Builder
	faint := theme.faint()

	b.WriteString(theme.header().Render("Time"))
	b.WriteString("\n")
	if len(d.Time) == 0 {
		b.WriteString(faint.Render("No time logged.") + "\n")
	}
	for _, e := range d.Time {
		mark := ""
		switch {
		case e.InvoiceID != nil:
			mark = faint.Render(" invoiced")
		case !e.Billable:
			mark = faint.Render(" non-billable")
		}
		line := fmt.Sprintf("%-10s %-14s %5.2fh × %-9s %10s  %s",
			e.WorkedAt.Format("2006-01-02"),
			ansi.Truncate(e.TechName, 14, "…"),
			e.Hours, money(e.Rate), money(e.Amount()), e.Description)
		b.WriteString(ansi.Truncate(line, max(20, width-13), "…") + mark + "\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.header().Render("Materials"))
	b.WriteString("\n")
	if len(d.Materials) == 0 {
		b.WriteString(faint.Render("No materials.") + "\n")
	}
	for _, m := range d.Materials {
		mark := ""
		if m.InvoiceID != nil {
			mark = faint.Render(" invoiced")
		}
		line := fmt.Sprintf("%6g × %-9s %10s  %s", m.Quantity, money(m.UnitPrice), money(m.Amount()), m.Description)
		b.WriteString(ansi.Truncate(line, max(20, width-9), "…") + mark + "\n")
	}

	s := d.Billing()
	b.WriteString("\n")
	b.WriteString(theme.header().Render("Unbilled"))
	b.WriteString("\n")
	b.WriteString(field(theme, "Hours", humanize.FormatFloat("#,###.##", s.UnbilledHours)) + "\n")
	b.WriteString(field(theme, "Labour", money(s.UnbilledLabour)) + "\n")
	b.WriteString(field(theme, "Parts", money(s.UnbilledParts)) + "\n")
	b.WriteString(field(theme, "Total", lipgloss.NewStyle().Bold(true).Render(money(s.Total()))) + "\n")

	if ms := d.Milestone(); ms != nil {
		b.WriteString("\n")
		b.WriteString(field(theme, "Milestone", fmt.Sprintf("%s %s  %s", ms.Name, money(ms.BillableAmount), theme.StatusBadge(string(ms.Status)))))
		b.WriteString("\n")
	}
	if s.Total() > 0 {
		b.WriteString("\n" + theme.help().Render("I generate invoice") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// commentsPane renders the comment stream and returns the line where the
// selected comment starts so the caller can keep it in view.
func commentsPane(theme Theme, d *ticket.Detail, cursor, width int) (string, int) {
	if len(d.Comments) == 0 {
		return theme.faint().Render("No comments yet. Press c to add one."), 0
	}
	var resolutionID int64
	if d.Ticket.ResolutionCommentID != nil {
		resolutionID = *d.Ticket.ResolutionCommentID
	}

	var blocks []string
	selectedLine, line := 0, 0
	for i, c := range d.Comments {
		vis := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render("INTERNAL")
		if c.Visibility == model.VisibilityPublic {
			vis = lipgloss.NewStyle().Bold(true).Foreground(theme.SuccessText).Render("PUBLIC")
		}
		head := theme.header().Render(c.AuthorName) + " " + theme.faint().Render(ago(c.CreatedAt)) + "  " + vis
		if c.ID == resolutionID {
			head += "  " + lipgloss.NewStyle().Foreground(theme.SuccessText).Render("✓ resolution")
		}
		body := richtext.Markdown(c.Body, width-2)

		gutter := "  "
		if i == cursor {
			gutter = lipgloss.NewStyle().Foreground(theme.Accent).Render("▌ ")
			selectedLine = line
		}
		var blk strings.Builder
		for _, l := range strings.Split(head+"\n"+body, "\n") {
			blk.WriteString(gutter + l + "\n")
			line++
		}
		line++ // separator
		blocks = append(blocks, strings.TrimRight(blk.String(), "\n"))
	}
	return strings.Join(blocks, "\n\n"), selectedLine
}
