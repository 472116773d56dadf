package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/baiirun/mspdesk/internal/model"
)

// table is the human rendering of a result: a header row and data rows,
// written with a tabwriter.
type table struct {
	headers []string
	rows    [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

// emit writes data in the configured format. json and yaml encode data
// itself; table writes tbl.
func emit(w io.Writer, format string, data any, tbl table) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case "yaml":
		return writeYAML(w, data)
	}

	if len(tbl.rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tbl.headers, "\t"))
	for _, row := range tbl.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// writeYAML encodes data as YAML using its json field names and order. The
// JSON is decoded into a yaml.Node (JSON is valid YAML) and re-emitted in
// block style.
func writeYAML(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}

// Cell formatters

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func agoPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return ago(*t)
}

func idOrDash(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func ticketTable(tickets []model.Ticket) table {
	t := table{headers: []string{"ID", "STATUS", "PRIORITY", "ACCOUNT", "SUBJECT", "UPDATED"}}
	for _, tk := range tickets {
		t.add(strconv.FormatInt(tk.ID, 10), string(tk.Status), string(tk.Priority),
			orDash(tk.AccountName), truncate(tk.Subject, 60), ago(tk.UpdatedAt))
	}
	return t
}

func invoiceTable(invoices []model.Invoice) table {
	t := table{headers: []string{"ID", "NUMBER", "ACCOUNT", "STATUS", "TOTAL", "ISSUED", "DUE"}}
	for _, inv := range invoices {
		t.add(strconv.FormatInt(inv.ID, 10), orDash(inv.Number), orDash(inv.AccountName), string(inv.Status),
			money(inv.Total), agoPtr(inv.IssuedAt), agoPtr(inv.DueAt))
	}
	return t
}

func commentTable(comments []model.Comment, resolutionID *int64) table {
	t := table{headers: []string{"ID", "VISIBILITY", "AUTHOR", "WHEN", "BODY"}}
	for _, c := range comments {
		body := truncate(c.Body, 70)
		if resolutionID != nil && *resolutionID == c.ID {
			body = "[resolution] " + body
		}
		t.add(strconv.FormatInt(c.ID, 10), string(c.Visibility), orDash(c.AuthorName), ago(c.CreatedAt), body)
	}
	return t
}
