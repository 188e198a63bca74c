package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewHoshinMCPServer creates an MCP server with all nine hoshin tools registered.
func NewHoshinMCPServer(svc *HoshinService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hoshin",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_hoshin",
		Description: "Create an empty Hoshin: five statement slots (s1-s5) and ten fixed connections with no direction yet.",
	}, svc.CreateHoshin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_hoshins",
		Description: "List every Hoshin, most recently updated first, with its progress: directions set, wizard readiness and whether a ranking can be calculated.",
	}, svc.ListHoshins)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_hoshin",
		Description: "Return the full Hoshin document: prompt, statements, connections and settings.",
	}, svc.GetHoshin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_statement",
		Description: "Set the text and/or initial order (1-5) of one statement. Statements must start with 'I/We must', 'I must' or 'We must' followed by 3-7 words.",
	}, svc.UpdateStatement)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_direction",
		Description: "Record which of two statements drives the other (from -> to), or clear that connection's direction.",
	}, svc.SetDirection)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_hoshin",
		Description: "Check a Hoshin against the authoring rules. Returns every issue with a code, message and location.",
	}, svc.ValidateHoshin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rank_hoshin",
		Description: "Rank the five statements by outgoing arrows, breaking ties by direct driver, then initial order, then slot. Fails unless the Hoshin is complete and valid.",
	}, svc.RankHoshin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_hoshin",
		Description: "Build the vBRIEF plan export of a complete Hoshin and its file name. Optionally write it to the export directory.",
	}, svc.ExportHoshin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_status",
		Description: "Summarise a Hoshin's progress: completed stages, directions set, the first outstanding issue and the next unset pair.",
	}, svc.GetStatus)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP at addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
