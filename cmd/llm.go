package cmd

import (
	"github.com/joescharf/recode/internal/config"
	"github.com/joescharf/recode/internal/llm"
	"github.com/joescharf/recode/internal/session"
)

// newCompleter creates the completion client for cfg, replaceable in tests.
var newCompleter = func(cfg config.Completion) (session.Completer, error) {
	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	ui.VerboseLog("Completion provider %s, model %s", cfg.Provider, client.Model())
	return client, nil
}
