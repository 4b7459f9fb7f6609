package main

import (
	"fmt"

	"github.com/Veraticus/expense-flow/internal/cli"
	"github.com/Veraticus/expense-flow/internal/storage"
	"github.com/spf13/cobra"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List or delete stored expenses",
	}

	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(deleteExpensesCmd())

	return cmd
}

func listExpensesCmd() *cobra.Command {
	var filter storage.RecordFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.GetRecords(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get expenses: %w", err)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No expenses found."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderExpenses(records))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Category, "category", "c", "", "Only this category")
	cmd.Flags().StringVar(&filter.From, "from", "", "Earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&filter.To, "to", "", "Latest date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 50, "Maximum rows to show (0 for all)")
	return cmd
}

func deleteExpensesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete expenses by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			deleted, err := store.DeleteRecords(ctx, args)
			if err != nil {
				return fmt.Errorf("failed to delete expenses: %w", err)
			}

			msg := fmt.Sprintf("Deleted %d of %d expenses", deleted, len(args))
			if deleted < len(args) {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(msg+" (some IDs were not found)"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
			return nil
		},
	}
}
