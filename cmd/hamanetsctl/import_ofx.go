package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"hamanets/internal/core"
	"hamanets/internal/log"
	"hamanets/internal/ofx"
)

func importOFXCmd(o *rootOptions) *cobra.Command {
	var (
		dryRun     bool
		categoryID string
	)
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX bank statements",
		Long: `Import transactions from OFX or QFX statements exported by a bank.

Transactions already imported, recognised by their bank transaction id,
are skipped, so the same statement can be imported twice safely.`,
		Example: `  hamanetsctl import-ofx ~/Downloads/statement.ofx
  hamanetsctl import-ofx --category other ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: o.withApp(func(cmd *cobra.Command, args []string, a *app) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			parser := ofx.NewParser(a.logger)
			if categoryID != "" {
				parser.CategoryID = categoryID
			}

			bar := progressbar.NewOptions(len(files),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("Reading statements"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
			)

			var (
				pending []core.Transaction
				skipped int
			)
			known := a.store.Transactions()
			for _, path := range files {
				txns, err := parseStatement(cmd, parser, path)
				_ = bar.Add(1)
				if err != nil {
					a.logger.Error("Failed to parse OFX file", "file", path, log.FieldError, err)
					fmt.Fprintln(cmd.ErrOrStderr(), formatWarning(fmt.Sprintf("%s: %v", filepath.Base(path), err)))
					continue
				}
				fresh, dup := ofx.Dedupe(known, txns)
				known = append(known, fresh...)
				pending = append(pending, fresh...)
				skipped += dup
			}
			_ = bar.Finish()

			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), formatSuccess(fmt.Sprintf("Would import %d transactions, %d already present", len(pending), skipped)))
				return nil
			}
			added, rejects, err := a.svc.ImportTransactions(cmd.Context(), pending)
			if err != nil {
				return err
			}
			for _, r := range rejects {
				fmt.Fprintln(cmd.ErrOrStderr(), formatWarning(r.Error()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess(fmt.Sprintf("Imported %d transactions, %d already present", added, skipped)))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "parse and deduplicate without saving")
	cmd.Flags().StringVar(&categoryID, "category", "", "category for imported transactions (default: other)")
	return cmd
}

func parseStatement(cmd *cobra.Command, parser *ofx.Parser, path string) ([]core.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.Parse(cmd.Context(), f)
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}
