package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/expense-flow/internal/cli"
	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/importer"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import expenses from a CSV file",
		Long: `Import expenses from a CSV file. Two layouts are accepted:

  Date,Amount,Description
  Date,Category,Amount,Description

A category that does not exactly match an active category is ignored.

Rows without a valid category are sent to the configured language model in
batches. Suggestions it is confident about are imported directly; the rest are
shown for review before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Parse and categorize but do not save anything")
	cmd.Flags().Bool("no-ai", false, "Skip automatic categorization; review every uncategorized row")
	cmd.Flags().Bool("non-interactive", false, "Do not prompt; fail if any row still needs a category")
	cmd.Flags().Int("batch-size", 40, "Rows per categorization request")
	cmd.Flags().Int("workers", 1, "Concurrent categorization requests")
	cmd.Flags().String("remote", "", "Categorize through an `expense serve` endpoint at this URL")

	_ = viper.BindPFlag("categorize.batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("categorize.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("categorize.remote_url", cmd.Flags().Lookup("remote"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noAI, _ := cmd.Flags().GetBool("no-ai")
	nonInteractive, _ := cmd.Flags().GetBool("non-interactive")
	out := cmd.OutOrStdout()
	logger := slog.Default()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := interrupts.HandleInterrupts(cmd.Context())
	defer stop()

	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc, cleanup, err := buildCategorizer(settings, noAI, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline := importer.NewPipeline(store, svc, logger)

	fmt.Fprintln(out, cli.FormatTitle("Importing "+args[0]))
	session, err := pipeline.Start(ctx, string(raw))
	if err != nil {
		var parseErr *common.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprintln(out, cli.FormatError(common.UserMessage(err)))
		}
		return err
	}

	if skipped := cli.RenderSkipped(session.Skipped); skipped != "" {
		fmt.Fprintln(out, skipped)
	}
	fmt.Fprintln(out, cli.RenderPreview(session))

	if dryRun {
		printReviewList(out, session.Result.NeedsReview)
		fmt.Fprintln(out, cli.FormatWarning("Dry run: nothing was saved"))
		return nil
	}

	if len(session.Result.NeedsReview) > 0 && !nonInteractive {
		if err := review(ctx, cmd, session); err != nil {
			return err
		}
	}

	summary, err := pipeline.Commit(ctx, session)
	if errors.Is(err, common.ErrIncompleteCategorization) {
		pending := session.Pending()
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf(
			"%d expense(s) still need a category; nothing was imported", len(pending))))
		printReviewList(out, pending)
		return err
	}
	if summary != nil {
		fmt.Fprintln(out, cli.RenderSummary(summary))
	}
	return err
}

func review(ctx context.Context, cmd *cobra.Command, session *importer.Session) error {
	prompter := cli.NewReviewPrompter(cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout())
	resolutions, err := prompter.Resolve(ctx, session.Result.NeedsReview, session.Categories)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	for index, category := range resolutions {
		if err := session.Resolve(index, category); err != nil {
			return err
		}
	}

	stats := prompter.Stats()
	slog.Debug("review finished",
		"confirmed", stats.Confirmed,
		"changed", stats.Changed,
		"skipped", stats.Skipped,
		"stopped", stats.Stopped)
	return nil
}

func printReviewList(out io.Writer, items []model.ReviewItem) {
	for _, item := range items {
		suggestion := "no suggestion"
		if item.Category != "" {
			suggestion = fmt.Sprintf("%s, %s confidence", item.Category, item.Confidence)
		}
		fmt.Fprintf(out, "  row %d: %s  %.2f  %s (%s)\n",
			item.Index+1, item.Date, item.Amount, item.Description, suggestion)
	}
}
