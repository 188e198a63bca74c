package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/hoshin/internal/mcptools"
)

func newServeMCPCmd(flags *cliFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the hoshin tools over MCP",
		Long: `serve-mcp exposes the document store as MCP tools. It speaks stdio by
default, or streamable HTTP when --addr (or mcp.addr in hoshin.yml) is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if addr == "" {
					addr = a.cfg.MCP.Addr
				}
				server := mcptools.NewHoshinMCPServer(mcptools.NewHoshinService(a.repo, a.cfg.Export.Dir, a.log))
				if addr == "" {
					a.log.Info("serving MCP on stdio")
					return mcptools.RunStdio(ctx, server)
				}
				a.log.Info("serving MCP over HTTP", zap.String("addr", addr))
				return mcptools.RunHTTP(ctx, server, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for streamable HTTP, e.g. localhost:8765")
	return cmd
}
