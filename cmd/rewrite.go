package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/joescharf/recode/internal/apperr"
	"github.com/joescharf/recode/internal/diff"
	"github.com/joescharf/recode/internal/guidelines"
	"github.com/joescharf/recode/internal/models"
	"github.com/joescharf/recode/internal/output"
	"github.com/joescharf/recode/internal/prompt"
	"github.com/joescharf/recode/internal/session"
	"github.com/joescharf/recode/internal/source"
)

var (
	rewriteGuidelinesFile string
	rewriteTemplate       string
	rewriteOut            string
	rewriteDiff           bool
	rewriteRating         int
	rewriteComment        string
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <code-file>...",
	Short: "Rewrite source files following guidelines",
	Long: `Send each source file with the guidelines to the completion model and print
the improved code followed by an explanation of the changes.

Guidelines come from --guidelines FILE or --template NAME (see 'recode templates');
a guidelines file wins if both are given. All files share one session, so
several files produce a revision history.`,
	Example: `  recode rewrite main.c --template "Fix Off-By-One Errors"
  recode rewrite main.c --guidelines style.txt --out improved.c --diff
  recode rewrite a.c b.c --template "Add Comments" --rating 4 --comment "useful"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rewriteRun(cmd.Context(), args)
	},
}

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteGuidelinesFile, "guidelines", "g", "", "Guidelines text file")
	rewriteCmd.Flags().StringVarP(&rewriteTemplate, "template", "t", "", "Guideline template name")
	rewriteCmd.Flags().StringVarP(&rewriteOut, "out", "o", "", "Write improved code to this file (or directory for several inputs)")
	rewriteCmd.Flags().BoolVar(&rewriteDiff, "diff", false, "Show a unified diff of the changes")
	rewriteCmd.Flags().IntVar(&rewriteRating, "rating", 0, "Rate the result from 1 to 5")
	rewriteCmd.Flags().StringVar(&rewriteComment, "comment", "", "Comment to go with --rating")
	rootCmd.AddCommand(rewriteCmd)
}

func rewriteRun(ctx context.Context, files []string) error {
	cfg, err := loadConfig(!dryRun)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	guidelinesText, err := rewriteGuidelines(catalog)
	if err != nil {
		return err
	}
	if rewriteRating != 0 && (rewriteRating < models.MinRating || rewriteRating > models.MaxRating) {
		return apperr.Validation("rating", "must be between %d and %d, got %d", models.MinRating, models.MaxRating, rewriteRating)
	}

	if err := checkOutputNames(files); err != nil {
		return err
	}

	if dryRun {
		for _, f := range files {
			src, err := source.ReadFile(f)
			if err != nil {
				return err
			}
			p := prompt.BuildFor(cfg.Language, src, guidelinesText)
			ui.DryRunMsg("Would send %s to %s (%s)", f, cfg.Completion.Provider, cfg.Completion.Model)
			ui.Heading("System")
			ui.Block(p.System)
			ui.Heading("User")
			ui.Block(p.User)
		}
		return nil
	}

	completer, err := newCompleter(cfg.Completion)
	if err != nil {
		return err
	}
	sess := session.New(ulid.Make().String(), completer, cfg.Language)

	template := ""
	if rewriteGuidelinesFile == "" {
		template = rewriteTemplate
	}

	for _, f := range files {
		src, err := source.ReadFile(f)
		if err != nil {
			return err
		}

		ui.Info("Rewriting %s", output.Cyan(f))
		rev, err := sess.Rewrite(ctx, models.RewriteRequest{
			SourceCode: src,
			Guidelines: guidelinesText,
			Template:   template,
		})
		if err != nil {
			return err
		}

		if err := printRevision(f, rev); err != nil {
			return err
		}
		if err := writeImproved(f, rev, len(files), cfg.OutputFilename); err != nil {
			return err
		}
	}

	if sess.Len() > 1 {
		printHistory(sess, files)
	}

	if rewriteRating != 0 {
		if err := sess.RecordFeedback(rewriteRating, rewriteComment); err != nil {
			return err
		}
		fb, _ := sess.Feedback()
		ui.Success("Feedback recorded: %s %s", output.RatingColor(fb.Rating), fb.Comment)
	}
	return nil
}

// rewriteGuidelines resolves --guidelines and --template into guideline text.
func rewriteGuidelines(catalog *guidelines.Catalog) (string, error) {
	if rewriteTemplate != "" {
		if _, ok := catalog.Lookup(rewriteTemplate); !ok {
			return "", apperr.Validation("template", "unknown template %q (see 'recode templates')", rewriteTemplate)
		}
	}

	var uploaded *string
	if rewriteGuidelinesFile != "" {
		text, err := source.ReadFile(rewriteGuidelinesFile)
		if err != nil {
			return "", err
		}
		uploaded = &text
	}

	text := catalog.Resolve(rewriteTemplate, uploaded)
	if strings.TrimSpace(text) == "" {
		return "", apperr.Validation("guidelines", "must not be empty; pass --guidelines FILE or --template NAME")
	}
	return text, nil
}

func printRevision(file string, rev models.Revision) error {
	fmt.Fprintln(ui.Out)
	ui.Heading(fmt.Sprintf("Improved code: %s (revision %d)", file, rev.Seq))
	ui.Block(rev.ImprovedCode)

	if rev.Explanation != "" {
		fmt.Fprintln(ui.Out)
		ui.Heading("Explanation")
		ui.Markdown(rev.Explanation)
	}

	if rewriteDiff {
		d, err := diff.Unified(filepath.Base(file), rev.OriginalCode, rev.ImprovedCode)
		if err != nil {
			return err
		}
		fmt.Fprintln(ui.Out)
		ui.Heading("Diff")
		if d == "" {
			ui.Info("No changes")
		} else {
			ui.Block(d)
		}
	}
	return nil
}

// writeImproved saves the improved code when --out is set. With several
// inputs --out names a directory and each result is saved as improved_<name>.
func writeImproved(file string, rev models.Revision, inputs int, defaultName string) error {
	if rewriteOut == "" {
		return nil
	}

	path := rewriteOut
	info, statErr := os.Stat(rewriteOut)
	isDir := statErr == nil && info.IsDir()
	switch {
	case inputs > 1:
		if err := os.MkdirAll(rewriteOut, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		path = filepath.Join(rewriteOut, "improved_"+filepath.Base(file))
	case isDir:
		path = filepath.Join(rewriteOut, defaultName)
	}

	if err := os.WriteFile(path, []byte(rev.ImprovedCode), 0o644); err != nil {
		return fmt.Errorf("write improved code: %w", err)
	}
	ui.Success("Wrote %s", path)
	return nil
}

// checkOutputNames rejects inputs whose improved_<name> outputs would
// overwrite each other in the --out directory.
func checkOutputNames(files []string) error {
	if rewriteOut == "" || len(files) < 2 {
		return nil
	}
	seen := make(map[string]string, len(files))
	for _, f := range files {
		base := filepath.Base(f)
		if prev, ok := seen[base]; ok {
			return apperr.Validation("out", "%s and %s would both be written to %s", prev, f, filepath.Join(rewriteOut, "improved_"+base))
		}
		seen[base] = f
	}
	return nil
}

func printHistory(sess *session.Session, files []string) {
	fmt.Fprintln(ui.Out)
	ui.Heading("History")
	table := ui.Table([]string{"Seq", "Time", "File", "Explanation"})
	for _, rev := range sess.Revisions() {
		summary, _, _ := strings.Cut(rev.Explanation, "\n")
		_ = table.Append([]string{
			fmt.Sprintf("%d", rev.Seq),
			rev.Timestamp.Local().Format("15:04:05"),
			files[rev.Seq-1],
			summary,
		})
	}
	_ = table.Render()
}
