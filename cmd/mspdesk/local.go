package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/mspdesk/internal/config"
	"github.com/baiirun/mspdesk/internal/logger"
	"github.com/baiirun/mspdesk/internal/store"
	"github.com/baiirun/mspdesk/internal/tui"
)

// visitView is the json/yaml shape of one history entry.
type visitView struct {
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Label     string `json:"label,omitempty"`
	VisitedAt string `json:"visited_at"`
}

func (c *cli) historyCmd() *cobra.Command {
	var clearHistory bool
	cmd := &cobra.Command{
		Use:   "history [type]",
		Short: "Show recently viewed records",
		Long: `Show the last ` + strconv.Itoa(store.MaxVisits) + ` records viewed per type (ticket, account, article).
With --clear, forget them instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types := []string{ticketHistory, accountHistory, articleHistory}
			if len(args) == 1 {
				types = args
			}
			if clearHistory {
				for _, t := range types {
					if err := c.db.ClearHistory(t); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return nil
			}

			views := []visitView{}
			tbl := table{headers: []string{"TYPE", "ID", "LABEL", "VISITED"}}
			for _, t := range types {
				visits, err := c.db.RecentVisits(t)
				if err != nil {
					return err
				}
				for _, v := range visits {
					views = append(views, visitView{Type: v.EntityType, ID: v.ID, Label: v.Label, VisitedAt: v.VisitedAt.UTC().Format(time.RFC3339)})
					tbl.add(v.EntityType, strconv.FormatInt(v.ID, 10), orDash(v.Label), ago(v.VisitedAt))
				}
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, views, tbl)
		},
	}
	cmd.Flags().BoolVar(&clearHistory, "clear", false, "forget the history instead of showing it")
	return cmd
}

func (c *cli) viewModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view-mode <page> [list|board]",
		Short: "Show or set a page's list/board preference",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := args[0]
			if len(args) == 2 {
				mode := store.ViewMode(args[1])
				if !mode.IsValid() {
					return fmt.Errorf("view mode must be list or board, got %q", args[1])
				}
				if err := c.db.SetViewMode(page, mode); err != nil {
					return err
				}
			}
			mode, err := c.db.ViewMode(page)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", page, mode)
			return nil
		},
	}
}

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive ticket console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The console owns the terminal; logs go to a file beside the config.
			dir, err := config.DefaultDir()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0700); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			f, err := os.OpenFile(filepath.Join(dir, "tui.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
			if err != nil {
				return fmt.Errorf("failed to open tui log: %w", err)
			}
			defer f.Close()
			c.log = logger.New(f, c.cfg.LogLevel)

			client, err := c.client()
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), client, c.db)
		},
	}
}
