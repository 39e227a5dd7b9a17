package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/joescharf/recode/internal/mcp"
	"github.com/joescharf/recode/internal/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

The server holds one rewrite session for as long as it runs. Configure it in
an MCP client with:

  {
    "mcpServers": {
      "recode": { "command": "recode", "args": ["mcp"] }
    }
  }

Available tools: recode_rewrite, recode_list_revisions,
recode_record_feedback, recode_list_templates`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun() error {
	// stdout carries the protocol, so everything else goes to stderr.
	ui.Out = os.Stderr

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	completer, err := newCompleter(cfg.Completion)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	sess := session.New(ulid.Make().String(), completer, cfg.Language)
	logger.Info("mcp session started", "session", sess.ID, "provider", cfg.Completion.Provider)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	return mcp.NewServer(sess, catalog, buildVersion).ServeStdio(ctx)
}
