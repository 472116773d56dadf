package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/baiirun/mspdesk/internal/api"
	"github.com/baiirun/mspdesk/internal/store"
)

func (c *cli) loginCmd() *cobra.Command {
	var passwordFile string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and save the session token",
		Long: `Log in to the backend and save the bearer token in the local state database.

The password is read from --password-file ("-" reads one line from stdin) or
prompted for on the terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			password, err := readPassword(cmd, passwordFile)
			if err != nil {
				return err
			}

			anon := c.anonClient()
			res, err := anon.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("failed to log in: %w", err)
			}

			s := store.Session{APIURL: anon.BaseURL(), Token: res.Token, Email: res.User.Email}
			if claims, err := api.ParseToken(res.Token); err != nil {
				c.log.Debug().Err(err).Msg("token is not a JWT; no expiry recorded")
			} else {
				s.ExpiresAt = claims.Expiry()
				if s.Email == "" {
					s.Email = claims.Email
				}
			}
			if s.Email == "" {
				s.Email = email
			}
			if err := c.db.SaveSession(s); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", s.Email)
			if s.ExpiresAt != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Session expires %s\n", ago(*s.ExpiresAt))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&passwordFile, "password-file", "", `file containing the password, or "-" for stdin`)
	return cmd
}

// readPassword reads the password from a file, from stdin ("-"), or from
// an interactive prompt with echo disabled.
func readPassword(cmd *cobra.Command, passwordFile string) (string, error) {
	switch passwordFile {
	case "":
	case "-":
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	default:
		data, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal available for the password prompt (use --password-file)")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.db.ClearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			user, err := client.Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get current user: %w", err)
			}
			s, err := c.db.LoadSession()
			if err != nil {
				return err
			}

			tbl := table{headers: []string{"NAME", "EMAIL", "ROLE", "BACKEND", "EXPIRES"}}
			tbl.add(orDash(user.Name), user.Email, orDash(user.Role), c.cfg.APIURL, agoPtr(s.ExpiresAt))
			return emit(cmd.OutOrStdout(), c.cfg.Output, user, tbl)
		},
	}
}
