package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/pkg/adapters/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts the Weave engine as an MCP Server.
This allows AI agents to list node classes, resolve schemas, validate and run prompts as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, _ := cmd.Flags().GetString("transport")
			port, _ := cmd.Flags().GetInt("port")

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			// Print nodes must not write into the JSON-RPC stream.
			cmd.SetOut(os.Stderr)
			engine, err := weave.New("", engineOptions(cmd, logger)...)
			if err != nil {
				return fmt.Errorf("error initializing weave: %w", err)
			}

			sessions, closeStore, err := newSessions(cmd, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := mcp.NewServer(engine, mcp.WithSessions(sessions), mcp.WithLogger(logger))

			switch transport {
			case "stdio":
				// Ensure logs don't corrupt JSON-RPC on Stdout
				log.SetOutput(os.Stderr)
				logger.Info("Starting Weave MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				logger.Info("Starting Weave MCP Server (SSE)", "port", port)

				// Create a context that cancels on interrupt signal
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("MCP server execution failed: %w", err)
				}
				logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
			}
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	addStoreFlags(cmd, false, "")
	return cmd
}
