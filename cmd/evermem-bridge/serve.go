package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	bridgeserver "github.com/HendryAvila/evermem-bridge/internal/server"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bridgeserver.New(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer b.Close()

	b.Start(ctx)

	stdio := server.NewStdioServer(b.MCP)
	stdio.SetErrorLogger(zap.NewStdLog(a.logger))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serving stdio: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config loading: version must work with a broken config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "evermem-bridge v%s\n", bridgeserver.Version)
		},
	}
}
