// evermem-bridge: long-term memory for AI agents, backed by EverMemOS.
//
// The bridge recalls relevant memories before an agent turn, captures
// durable user facts after it, and exposes memory tools over MCP.
//
// Usage:
//
//	evermem-bridge serve            # Start MCP server (stdio transport)
//	evermem-bridge search <query>   # Search memories
//	evermem-bridge health           # Check the EverMemOS connection
//	evermem-bridge stats            # Record counts per memory type
//	evermem-bridge journal          # Recent auto-capture attempts
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/HendryAvila/evermem-bridge/internal/config"
	"github.com/HendryAvila/evermem-bridge/internal/evermem"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("already reported")

// app holds the state shared by every command of one invocation.
type app struct {
	// Global flags
	verbose    bool
	configPath string
	apiURL     string

	cfg    config.BridgeConfig
	logger *zap.Logger

	// newClient is swapped in tests.
	newClient func(cfg config.BridgeConfig) *evermem.Client
}

func main() {
	if err := newApp().rootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newApp() *app {
	return &app{
		newClient: func(cfg config.BridgeConfig) *evermem.Client { return evermem.New(cfg.APIURL) },
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "evermem-bridge",
		Short: "EverMemOS memory bridge for AI agents",
		Long: `evermem-bridge connects AI agents to EverMemOS long-term memory.

Before a turn it recalls relevant memories and prepends them to the
agent's context. After an interaction it captures durable user facts
(preferences, decisions, contact details, explicit "remember" requests).

Run "evermem-bridge serve" from your MCP host configuration.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultConfigPath(), "Path to the YAML config file")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "EverMemOS API URL (overrides config and "+config.EnvAPIURL+")")

	root.AddCommand(
		a.serveCmd(),
		a.searchCmd(),
		a.healthCmd(),
		a.statsCmd(),
		a.journalCmd(),
		versionCmd(),
	)
	return root
}

// setup builds the logger and resolves configuration. Logs always go to
// stderr so they never corrupt MCP traffic on stdout.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.logger == nil {
		zc := zap.NewProductionConfig()
		if a.verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.logger = logger
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	a.cfg = cfg

	a.logger.Debug("configuration resolved",
		zap.String("config", a.configPath),
		zap.String("api", cfg.APIURL),
		zap.String("user", cfg.DefaultUserID),
	)
	return nil
}
