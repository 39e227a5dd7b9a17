package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tmpl"},
	Short:   "List guideline templates",
	Long: `List the guideline templates usable with 'recode rewrite --template'.

Templates from the file named by templates.file are merged into the built-in
list; a template with a built-in name replaces it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return templatesRun()
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func templatesRun() error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	table := ui.Table([]string{"Name", "Guidelines"})
	for _, t := range catalog.Templates() {
		summary, _, more := strings.Cut(strings.TrimSpace(t.Body), "\n")
		if more {
			summary += " ..."
		}
		if ui.Verbose {
			summary = t.Body
		}
		_ = table.Append([]string{t.Name, summary})
	}
	return table.Render()
}
