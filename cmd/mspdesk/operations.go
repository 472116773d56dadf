package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baiirun/mspdesk/internal/model"
)

func (c *cli) campaignsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaigns",
		Aliases: []string{"campaign"},
		Short:   "Email campaigns and their targets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			campaigns, err := client.ListCampaigns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list campaigns: %w", err)
			}
			if campaigns == nil {
				campaigns = []model.Campaign{}
			}
			t := table{headers: []string{"ID", "NAME", "STATUS", "TARGETS", "SCHEDULED"}}
			for _, cp := range campaigns {
				t.add(strconv.FormatInt(cp.ID, 10), cp.Name, cp.Status, strconv.Itoa(cp.TargetCount), agoPtr(cp.ScheduledAt))
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, campaigns, t)
		},
	}

	targets := &cobra.Command{
		Use:   "targets <campaign-id>",
		Short: "List a campaign's targets",
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
			list, err := client.ListCampaignTargets(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to list targets of campaign %d: %w", id, err)
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, nonNilTargets(list), targetTable(list))
		},
	}

	add := &cobra.Command{
		Use:   "add-targets <campaign-id> <contact-id>...",
		Short: "Add contacts to a campaign in one bulk request",
		Long: `Add contacts to a campaign. Contact ids may be given as separate
arguments or comma-separated.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			contacts, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			added, err := client.AddCampaignTargets(cmd.Context(), id, contacts)
			if err != nil {
				return fmt.Errorf("failed to add targets to campaign %d: %w", id, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Added %d of %d contacts\n", len(added), len(contacts))
			return emit(cmd.OutOrStdout(), c.cfg.Output, nonNilTargets(added), targetTable(added))
		},
	}

	cmd.AddCommand(list, targets, add)
	return cmd
}

func nonNilTargets(t []model.CampaignTarget) []model.CampaignTarget {
	if t == nil {
		return []model.CampaignTarget{}
	}
	return t
}

func targetTable(targets []model.CampaignTarget) table {
	t := table{headers: []string{"ID", "CONTACT", "EMAIL", "STATUS"}}
	for _, tg := range targets {
		t.add(strconv.FormatInt(tg.ID, 10), strconv.FormatInt(tg.ContactID, 10), tg.Email, tg.Status)
	}
	return t
}

func (c *cli) automationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "automation",
		Short: "Automation rules and their run log",
		Long: `Automation rules map backend events to actions. The backend runs them;
this console only lists, enables and disables them.`,
	}

	rules := &cobra.Command{
		Use:   "rules",
		Short: "List automation rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			list, err := client.ListAutomationRules(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list automation rules: %w", err)
			}
			if list == nil {
				list = []model.AutomationRule{}
			}
			t := table{headers: []string{"ID", "NAME", "EVENT", "ACTION", "ENABLED"}}
			for _, r := range list {
				t.add(strconv.FormatInt(r.ID, 10), r.Name, r.Event, r.Action, yesNo(r.Enabled))
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, list, t)
		},
	}

	logs := &cobra.Command{
		Use:   "logs",
		Short: "Show recent automation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			list, err := client.ListAutomationLogs(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list automation logs: %w", err)
			}
			if list == nil {
				list = []model.AutomationLog{}
			}
			t := table{headers: []string{"ID", "RULE", "OUTCOME", "WHEN", "MESSAGE"}}
			for _, l := range list {
				rule := l.RuleName
				if rule == "" {
					rule = "#" + strconv.FormatInt(l.RuleID, 10)
				}
				t.add(strconv.FormatInt(l.ID, 10), rule, l.Outcome, ago(l.CreatedAt), truncate(orDash(l.Message), 60))
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, list, t)
		},
	}

	cmd.AddCommand(rules, logs, c.ruleToggleCmd("enable", true), c.ruleToggleCmd("disable", false))
	return cmd
}

func (c *cli) ruleToggleCmd(verb string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <rule-id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an automation rule",
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
			r, err := client.SetAutomationRuleEnabled(cmd.Context(), id, enabled)
			if err != nil {
				return fmt.Errorf("failed to %s rule %d: %w", verb, id, err)
			}
			state := "disabled"
			if r.Enabled {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Name, state)
			return nil
		},
	}
}

func (c *cli) templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template"},
		Short:   "Quote and project templates",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			templates, err := client.ListTemplates(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}
			if templates == nil {
				templates = []model.Template{}
			}
			t := table{headers: []string{"ID", "NAME", "KIND", "SECTIONS", "ITEMS", "VALUE"}}
			for _, tp := range templates {
				items, value := 0, 0.0
				for _, s := range tp.Sections {
					items += len(s.Items)
					for _, it := range s.Items {
						value += it.Quantity * it.UnitPrice
					}
				}
				t.add(strconv.FormatInt(tp.ID, 10), tp.Name, tp.Kind, strconv.Itoa(len(tp.Sections)), strconv.Itoa(items), money(value))
			}
			return emit(cmd.OutOrStdout(), c.cfg.Output, templates, t)
		},
	}

	var in model.TemplateApply
	apply := &cobra.Command{
		Use:   "apply <template-id>",
		Short: "Copy a template's sections onto a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if in.TargetType == "" || in.TargetID <= 0 {
				return fmt.Errorf("--target-type and --target-id are required")
			}
			client, err := c.client()
			if err != nil {
				return err
			}
			if err := client.ApplyTemplate(cmd.Context(), id, in); err != nil {
				return fmt.Errorf("failed to apply template %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied template %d to %s %d\n", id, in.TargetType, in.TargetID)
			return nil
		},
	}
	apply.Flags().StringVar(&in.TargetType, "target-type", "", "record type, e.g. quote or project")
	apply.Flags().Int64Var(&in.TargetID, "target-id", 0, "record id")

	cmd.AddCommand(list, apply)
	return cmd
}
