package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gcal-mcp/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools and resources.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	markdown, err := buildDocs(context.Background())
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// buildDocs registers everything in write mode, without credentials, and
// renders the result.
func buildDocs(ctx context.Context) (string, error) {
	serverContext, err := server.NewServerContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := newMCPServer()
	if err := registerAll(mcpSrv, serverContext, false); err != nil {
		return "", err
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	resources, err := listResources(ctx, mcpSrv)
	if err != nil {
		return "", err
	}

	return generateToolsMarkdown(tools, resources), nil
}

// listResources asks the server for its resources the way a client would.
func listResources(ctx context.Context, mcpSrv *mcpserver.MCPServer) ([]mcp.Resource, error) {
	resp := mcpSrv.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"resources/list"}`))
	result, ok := resp.(mcp.JSONRPCResponse)
	if !ok {
		return nil, fmt.Errorf("failed to list resources: unexpected response %T", resp)
	}

	data, err := json.Marshal(result.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource list: %w", err)
	}
	var list mcp.ListResourcesResult
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode resource list: %w", err)
	}

	sort.Slice(list.Resources, func(i, j int) bool {
		return list.Resources[i].URI < list.Resources[j].URI
	})
	return list.Resources, nil
}

func generateToolsMarkdown(tools []mcp.Tool, resources []mcp.Resource) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running gcal-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(tools)

	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, markdownAnchor(category)))
	}
	if len(resources) > 0 {
		sb.WriteString("- [Resources](#resources)\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Multi-Account Support\n\n")
	sb.WriteString("All tools support an optional `account` parameter to specify which Google account to use:\n\n")
	sb.WriteString("- **Default behavior:** If `account` is not specified, the `default` account is used\n")
	sb.WriteString("- **Multiple accounts:** You can manage multiple Google accounts (e.g., `work`, `personal`)\n")
	sb.WriteString("- **Forwarded tokens:** Over HTTP, a token sent with the request selects the account it was stored under\n\n")

	sb.WriteString("## Read-Only Mode\n\n")
	sb.WriteString("By default the server starts read-only. Tools that change calendar data or open notification channels are only available with `serve --yolo`.\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", category))

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	if len(resources) > 0 {
		sb.WriteString("## Resources\n\n")
		for _, resource := range resources {
			sb.WriteString(fmt.Sprintf("### %s\n\n", resource.URI))
			if resource.Description != "" {
				sb.WriteString(fmt.Sprintf("%s\n\n", resource.Description))
			}
			if resource.MIMEType != "" {
				sb.WriteString(fmt.Sprintf("**MIME type:** `%s`\n\n", resource.MIMEType))
			}
		}
	}

	return sb.String()
}

func markdownAnchor(heading string) string {
	return strings.ToLower(strings.ReplaceAll(heading, " ", "-"))
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)

	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}

	return categories
}

// getCategoryFromToolName maps a tool to the Calendar API resource it works on.
// Order matters: calendar list tools also mention "calendar".
func getCategoryFromToolName(name string) string {
	if strings.HasPrefix(name, "google_") {
		return "Authentication Tools"
	}

	rest, ok := strings.CutPrefix(name, "calendar_")
	if !ok {
		return "Other"
	}

	switch {
	case strings.Contains(rest, "acl"):
		return "Access Control Tools"
	case strings.Contains(rest, "calendar_list"), rest == "list_calendars":
		return "Calendar List Tools"
	case strings.Contains(rest, "event"):
		return "Event Tools"
	case strings.Contains(rest, "freebusy"), strings.Contains(rest, "available"):
		return "Scheduling Tools"
	case strings.Contains(rest, "setting"), strings.Contains(rest, "colors"):
		return "Settings Tools"
	case strings.Contains(rest, "channel"):
		return "Notification Channel Tools"
	case strings.Contains(rest, "calendar"):
		return "Calendar Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if tool.Annotations.ReadOnlyHint != nil && *tool.Annotations.ReadOnlyHint {
		sb.WriteString("*Read-only.*\n\n")
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			prop := tool.InputSchema.Properties[name]
			requiredStr := "optional"
			if contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			propMap, ok := prop.(map[string]any)
			if !ok {
				continue
			}

			propType := getPropertyType(propMap)

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, propType, requiredStr))

			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", propType))
			}

			if values, ok := propMap["enum"].([]string); ok && len(values) > 0 {
				sb.WriteString(fmt.Sprintf(" (one of: `%s`)", strings.Join(values, "`, `")))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
