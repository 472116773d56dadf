package api

import (
	"context"

	"github.com/baiirun/mspdesk/internal/model"
)

func (c *Client) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	var out []model.Campaign
	if err := c.get(ctx, "/campaigns", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCampaignTargets(ctx context.Context, campaignID int64) ([]model.CampaignTarget, error) {
	var out []model.CampaignTarget
	if err := c.get(ctx, idPath("/campaigns/%s/targets", campaignID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddCampaignTargets adds contacts to a campaign in one bulk request and
// returns the targets the backend created.
func (c *Client) AddCampaignTargets(ctx context.Context, campaignID int64, contactIDs []int64) ([]model.CampaignTarget, error) {
	body := map[string][]int64{"contact_ids": contactIDs}
	var out []model.CampaignTarget
	if err := c.post(ctx, idPath("/campaigns/%s/targets/bulk", campaignID), body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAutomationRules(ctx context.Context) ([]model.AutomationRule, error) {
	var out []model.AutomationRule
	if err := c.get(ctx, "/automation/rules", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAutomationRuleEnabled toggles a rule. Rules are executed by the
// backend, never by the console.
func (c *Client) SetAutomationRuleEnabled(ctx context.Context, id int64, enabled bool) (*model.AutomationRule, error) {
	var out model.AutomationRule
	body := map[string]bool{"enabled": enabled}
	if err := c.put(ctx, idPath("/automation/rules/%s", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListAutomationLogs(ctx context.Context) ([]model.AutomationLog, error) {
	var out []model.AutomationLog
	if err := c.get(ctx, "/automation/logs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]model.Template, error) {
	var out []model.Template
	if err := c.get(ctx, "/templates", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyTemplate copies a template's sections and items onto a target
// record (for example a quote or project).
func (c *Client) ApplyTemplate(ctx context.Context, templateID int64, in model.TemplateApply) error {
	return c.post(ctx, idPath("/templates/%s/apply", templateID), in, nil)
}
