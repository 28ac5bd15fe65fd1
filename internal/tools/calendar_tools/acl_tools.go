package calendar_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/server"
	"github.com/teemow/gcal-mcp/internal/tools/common"
)

func aclRuleOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		objectOption("rule", "ACL rule resource as defined by the Calendar API.", false),
		mcp.WithString("role",
			mcp.Description("Role to grant"),
			mcp.Enum(calendar.RoleNone, calendar.RoleFreeBusyReader, calendar.RoleReader, calendar.RoleWriter, calendar.RoleOwner),
		),
		mcp.WithString("scopeType",
			mcp.Description("Who the rule applies to: 'default' (public), 'user', 'group' or 'domain'"),
			mcp.Enum("default", "user", "group", "domain"),
		),
		mcp.WithString("scopeValue",
			mcp.Description("Email address or domain name of the scope (omit for 'default')"),
		),
		mcp.WithBoolean("sendNotifications",
			mcp.Description("Notify the grantee about the change (default: true)"),
		),
	}
}

// aclRuleArgument returns the "rule" object if given, otherwise a rule
// built from role, scopeType and scopeValue.
func aclRuleArgument(args map[string]interface{}) (*calendarapi.AclRule, error) {
	var rule calendarapi.AclRule
	ok, err := common.DecodeObject(args, "rule", &rule)
	if err != nil {
		return nil, err
	}
	if ok {
		return &rule, nil
	}

	rule.Role = common.String(args, "role")
	if scopeType := common.String(args, "scopeType"); scopeType != "" {
		rule.Scope = &calendarapi.AclRuleScope{
			Type:  scopeType,
			Value: common.String(args, "scopeValue"),
		}
	}
	return &rule, nil
}

// RegisterACLTools registers access control tools with the MCP server
func RegisterACLTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listACLTool := mcp.NewTool("calendar_list_acl",
		mcp.WithDescription("List who has access to a calendar"),
		accountOption(),
		calendarIDOption(),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of rules to return"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Token of the page to return"),
		),
		mcp.WithBoolean("showDeleted",
			mcp.Description("Include deleted rules (role 'none')"),
		),
		mcp.WithString("syncToken",
			mcp.Description("Token from a previous list call to return only changed rules"),
		),
		mcp.WithBoolean("raw",
			mcp.Description(rawDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(listACLTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_list_acl", "acl.list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListACL(ctx, request, sc)
		}))

	getACLTool := mcp.NewTool("calendar_get_acl_rule",
		mcp.WithDescription("Get a single access control rule of a calendar"),
		accountOption(),
		calendarIDOption(),
		mcp.WithString("ruleId",
			mcp.Required(),
			mcp.Description("ACL rule ID (e.g., 'user:alice@example.com')"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(getACLTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_get_acl_rule", "acl.get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetACLRule(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createACLTool := newTool("calendar_create_acl_rule",
		"Share a calendar by granting a role to a user, group, domain or the public",
		[]mcp.ToolOption{accountOption(), calendarIDOption()},
		aclRuleOptions(),
	)

	s.AddTool(createACLTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_create_acl_rule", "acl.insert", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateACLRule(ctx, request, sc)
		}))

	ruleIDOption := mcp.WithString("ruleId",
		mcp.Required(),
		mcp.Description("ACL rule ID"),
	)

	updateACLTool := newTool("calendar_update_acl_rule",
		"Replace an access control rule. The scope of a rule cannot change.",
		[]mcp.ToolOption{accountOption(), calendarIDOption(), ruleIDOption},
		aclRuleOptions(),
	)

	s.AddTool(updateACLTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_update_acl_rule", "acl.update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteACLRule(ctx, request, sc, false)
		}))

	patchACLTool := newTool("calendar_patch_acl_rule",
		"Change the role of an access control rule",
		[]mcp.ToolOption{accountOption(), calendarIDOption(), ruleIDOption},
		aclRuleOptions(),
	)

	s.AddTool(patchACLTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_patch_acl_rule", "acl.patch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteACLRule(ctx, request, sc, true)
		}))

	deleteACLTool := mcp.NewTool("calendar_delete_acl_rule",
		mcp.WithDescription("Revoke access by deleting an access control rule"),
		accountOption(),
		calendarIDOption(),
		ruleIDOption,
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(deleteACLTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_delete_acl_rule", "acl.delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteACLRule(ctx, request, sc)
		}))

	watchACLTool := newTool("calendar_watch_acl",
		"Open a push notification channel for changes to the access control rules of a calendar",
		[]mcp.ToolOption{accountOption(), calendarIDOption()},
		watchToolOptions(),
		[]mcp.ToolOption{
			mcp.WithString("syncToken",
				mcp.Description("Only notify about changes after this sync token"),
			),
			mcp.WithBoolean("showDeleted",
				mcp.Description("Include deleted rules"),
			),
		},
	)

	s.AddTool(watchACLTool, common.InstrumentedToolHandlerWithOperation(
		"calendar_watch_acl", "acl.watch", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWatchACL(ctx, request, sc)
		}))

	return nil
}

func handleListACL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	maxResults, err := common.Int(args, "maxResults", 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	acl, err := client.ListACL(ctx, common.String(args, "calendarId"), calendar.AclListOptions{
		MaxResults:  maxResults,
		PageToken:   common.String(args, "pageToken"),
		ShowDeleted: common.Bool(args, "showDeleted"),
		SyncToken:   common.String(args, "syncToken"),
	})
	if err != nil {
		return common.ErrorResult("list access rules", err), nil
	}

	if common.Bool(args, "raw") {
		return common.JSONResult(acl)
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d access rule(s):\n\n", len(acl.Items))
	for i, rule := range acl.Items {
		scope := "unknown"
		if rule.Scope != nil {
			scope = rule.Scope.Type
			if rule.Scope.Value != "" {
				scope += ":" + rule.Scope.Value
			}
		}
		fmt.Fprintf(&result, "%d. %s\n", i+1, scope)
		fmt.Fprintf(&result, "   Role: %s\n", rule.Role)
		fmt.Fprintf(&result, "   Rule ID: %s\n\n", rule.Id)
	}
	if acl.NextPageToken != "" {
		fmt.Fprintf(&result, "More rules available. Next page token: %s\n", acl.NextPageToken)
	}

	return mcp.NewToolResultText(result.String()), nil
}

func handleGetACLRule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	ruleID, err := common.RequiredString(args, "ruleId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rule, err := client.GetACLRule(ctx, common.String(args, "calendarId"), ruleID)
	if err != nil {
		return common.ErrorResult("get access rule", err), nil
	}
	return common.JSONResult(rule)
}

func handleCreateACLRule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	rule, err := aclRuleArgument(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := client.InsertACLRule(ctx, common.String(args, "calendarId"), rule, calendar.AclWriteOptions{
		SendNotifications: common.OptionalBool(args, "sendNotifications"),
	})
	if err != nil {
		return common.ErrorResult("create access rule", err), nil
	}
	return common.JSONResult(created)
}

func handleWriteACLRule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, patch bool) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)
	calendarID := common.String(args, "calendarId")

	ruleID, err := common.RequiredString(args, "ruleId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rule, err := aclRuleArgument(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := calendar.AclWriteOptions{
		SendNotifications: common.OptionalBool(args, "sendNotifications"),
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if patch {
		patched, err := client.PatchACLRule(ctx, calendarID, ruleID, rule, opts)
		if err != nil {
			return common.ErrorResult("patch access rule", err), nil
		}
		return common.JSONResult(patched)
	}

	updated, err := client.UpdateACLRule(ctx, calendarID, ruleID, rule, opts)
	if err != nil {
		return common.ErrorResult("update access rule", err), nil
	}
	return common.JSONResult(updated)
}

func handleDeleteACLRule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	ruleID, err := common.RequiredString(args, "ruleId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteACLRule(ctx, common.String(args, "calendarId"), ruleID); err != nil {
		return common.ErrorResult("delete access rule", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Access rule %s deleted successfully", ruleID)), nil
}

func handleWatchACL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	opts, err := watchOptions(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts.SyncToken = common.String(args, "syncToken")
	opts.ShowDeleted = common.Bool(args, "showDeleted")

	client, err := getCalendarClient(account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	channel, err := client.WatchACL(ctx, common.String(args, "calendarId"), opts)
	if err != nil {
		return common.ErrorResult("watch access rules", err), nil
	}
	return common.JSONResult(channel)
}
