package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/baiirun/mspdesk/internal/api"
	"github.com/baiirun/mspdesk/internal/config"
	"github.com/baiirun/mspdesk/internal/logger"
	"github.com/baiirun/mspdesk/internal/store"
)

// cli carries the global flags and what PersistentPreRunE builds from them.
type cli struct {
	configPath string
	output     string
	logLevel   string
	dbPath     string

	cfg config.Config
	log zerolog.Logger
	db  *store.DB
	now func() time.Time
}

func newRootCmd() *cobra.Command {
	c := &cli{now: time.Now}

	root := &cobra.Command{
		Use:   "mspdesk",
		Short: "Operator console for the MSP backend",
		Long: `A CLI and terminal console for running an MSP: tickets, accounts,
billing, campaigns, automation, templates and the client portal.

Run 'mspdesk login' once, then 'mspdesk tui' for the interactive ticket console.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.mspdesk/config.yaml)")
	flags.StringVarP(&c.output, "output", "o", "", "output format: table, json or yaml")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&c.dbPath, "db", "", "local state database (default ~/.mspdesk/mspdesk.db)")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.ticketsCmd(),
		c.accountsCmd(),
		c.contactsCmd(),
		c.productsCmd(),
		c.invoicesCmd(),
		c.articlesCmd(),
		c.campaignsCmd(),
		c.automationCmd(),
		c.templatesCmd(),
		c.portalCmd(),
		c.historyCmd(),
		c.viewModeCmd(),
		c.tuiCmd(),
	)
	return root
}

// setup loads configuration, builds the logger and opens the local store.
// Flags override the config file, which overrides the defaults.
func (c *cli) setup(cmd *cobra.Command) error {
	dir, err := config.DefaultDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(c.configPath, dir)
	if err != nil {
		return err
	}
	if c.output != "" {
		cfg.Output = c.output
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.New(cmd.ErrOrStderr(), cfg.LogLevel)

	db, err := store.OpenDefault(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open local state: %w", err)
	}
	c.db = db
	return nil
}

func (c *cli) close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// anonClient is a client without a token, for login.
func (c *cli) anonClient() *api.Client {
	return api.New(c.cfg.APIURL, api.WithTimeout(c.cfg.Timeout), api.WithLogger(c.log))
}

// client returns a client carrying the stored session token.
func (c *cli) client() (*api.Client, error) {
	s, err := c.db.LoadSession()
	if err != nil {
		return nil, err
	}
	if s.Expired(c.now()) {
		return nil, fmt.Errorf("session for %s expired %s (run 'mspdesk login')", s.Email, s.ExpiresAt.Format(time.RFC1123))
	}
	anon := c.anonClient()
	if s.APIURL != "" && s.APIURL != anon.BaseURL() {
		c.log.Warn().Str("session", s.APIURL).Str("config", anon.BaseURL()).Msg("session was created against a different api_url")
	}
	return anon.Authorized(s.Token), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "the backend rejected the stored token; run 'mspdesk login'")
		}
		os.Exit(1)
	}
}
