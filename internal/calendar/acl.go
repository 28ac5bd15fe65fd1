package calendar

import (
	"context"
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
)

// Roles an access control rule can grant.
const (
	RoleNone           = "none"
	RoleFreeBusyReader = "freeBusyReader"
	RoleReader         = "reader"
	RoleWriter         = "writer"
	RoleOwner          = "owner"
)

// ListACL returns one page of the access control rules of a calendar.
func (c *Client) ListACL(ctx context.Context, calendarID string, opts AclListOptions) (*calendar.Acl, error) {
	call := c.svc.Acl.List(calendarOrPrimary(calendarID)).Context(ctx)
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.ShowDeleted {
		call = call.ShowDeleted(true)
	}
	if opts.SyncToken != "" {
		call = call.SyncToken(opts.SyncToken)
	}

	acl, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list acl rules: %w", err)
	}
	return acl, nil
}

// GetACLRule returns a single access control rule.
func (c *Client) GetACLRule(ctx context.Context, calendarID, ruleID string) (*calendar.AclRule, error) {
	if err := requireArg("ruleID", ruleID); err != nil {
		return nil, err
	}

	rule, err := c.svc.Acl.Get(calendarOrPrimary(calendarID), ruleID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get acl rule: %w", err)
	}
	return rule, nil
}

// InsertACLRule grants a role on a calendar to a scope.
func (c *Client) InsertACLRule(ctx context.Context, calendarID string, rule *calendar.AclRule, opts AclWriteOptions) (*calendar.AclRule, error) {
	if err := requireACLRule(rule); err != nil {
		return nil, err
	}

	call := c.svc.Acl.Insert(calendarOrPrimary(calendarID), rule).Context(ctx)
	if opts.SendNotifications != nil {
		call = call.SendNotifications(*opts.SendNotifications)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert acl rule: %w", err)
	}
	return created, nil
}

// UpdateACLRule replaces an access control rule.
func (c *Client) UpdateACLRule(ctx context.Context, calendarID, ruleID string, rule *calendar.AclRule, opts AclWriteOptions) (*calendar.AclRule, error) {
	if err := requireArg("ruleID", ruleID); err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, invalidArg("rule is required")
	}

	call := c.svc.Acl.Update(calendarOrPrimary(calendarID), ruleID, rule).Context(ctx)
	if opts.SendNotifications != nil {
		call = call.SendNotifications(*opts.SendNotifications)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update acl rule: %w", err)
	}
	return updated, nil
}

// PatchACLRule updates only the fields present in rule.
func (c *Client) PatchACLRule(ctx context.Context, calendarID, ruleID string, rule *calendar.AclRule, opts AclWriteOptions) (*calendar.AclRule, error) {
	if err := requireArg("ruleID", ruleID); err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, invalidArg("rule is required")
	}

	call := c.svc.Acl.Patch(calendarOrPrimary(calendarID), ruleID, rule).Context(ctx)
	if opts.SendNotifications != nil {
		call = call.SendNotifications(*opts.SendNotifications)
	}

	patched, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch acl rule: %w", err)
	}
	return patched, nil
}

// DeleteACLRule removes an access control rule.
func (c *Client) DeleteACLRule(ctx context.Context, calendarID, ruleID string) error {
	if err := requireArg("ruleID", ruleID); err != nil {
		return err
	}

	if err := c.svc.Acl.Delete(calendarOrPrimary(calendarID), ruleID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete acl rule: %w", err)
	}
	return nil
}

// WatchACL opens a push notification channel for changes to the access
// control rules of a calendar.
func (c *Client) WatchACL(ctx context.Context, calendarID string, opts WatchOptions) (*calendar.Channel, error) {
	channel, err := opts.channel()
	if err != nil {
		return nil, err
	}

	call := c.svc.Acl.Watch(calendarOrPrimary(calendarID), channel).Context(ctx)
	if opts.SyncToken != "" {
		call = call.SyncToken(opts.SyncToken)
	}
	if opts.ShowDeleted {
		call = call.ShowDeleted(true)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to watch acl: %w", err)
	}
	return created, nil
}

func requireACLRule(rule *calendar.AclRule) error {
	if rule == nil {
		return invalidArg("rule is required")
	}
	if err := requireArg("rule.role", rule.Role); err != nil {
		return err
	}
	if rule.Scope == nil || rule.Scope.Type == "" {
		return invalidArg("rule.scope.type is required")
	}
	if rule.Scope.Type != "default" && rule.Scope.Value == "" {
		return invalidArg("rule.scope.value is required for scope type %q", rule.Scope.Type)
	}
	return nil
}
