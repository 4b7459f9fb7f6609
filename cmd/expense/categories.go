package main

import (
	"fmt"

	"github.com/Veraticus/expense-flow/internal/cli"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long: `List, add, edit, archive, restore and reorder expense categories.

Descriptions are shown to the categorizer, so a short list of typical
merchants or purchases improves its suggestions.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(editCategoryCmd())
	cmd.AddCommand(archiveCategoryCmd())
	cmd.AddCommand(restoreCategoryCmd())
	cmd.AddCommand(reorderCategoriesCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories in display order",
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

			categories, err := store.GetActiveCategories(ctx)
			if all {
				categories, err = store.GetAllCategories(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No categories found. Use 'expense categories add' to create one."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(categories))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived categories")
	return cmd
}

func addCategoryCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category at the end of the order",
		Args:  cobra.ExactArgs(1),
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

			category, err := store.CreateCategory(ctx, args[0], description)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q", category.Name)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "What belongs in this category")
	return cmd
}

func editCategoryCmd() *cobra.Command {
	var (
		newName     string
		description string
	)

	cmd := &cobra.Command{
		Use:   "edit <name>",
		Short: "Rename a category or change its description",
		Long: `Rename a category or change its description. Existing expenses
follow a rename.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("description") {
				return fmt.Errorf("nothing to change: pass --name and/or --description")
			}

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

			current, err := store.GetCategoryByName(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get category: %w", err)
			}
			if !cmd.Flags().Changed("description") {
				description = current.Description
			}

			updated, err := store.UpdateCategory(ctx, current.Name, newName, description)
			if err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %q", updated.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "New name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	return cmd
}

func archiveCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <name>",
		Short: "Hide a category from imports; existing expenses keep it",
		Args:  cobra.ExactArgs(1),
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

			if err := store.ArchiveCategory(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to archive category: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Archived category %q", args[0])))
			return nil
		},
	}
}

func restoreCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <name>",
		Short: "Make an archived category active again",
		Args:  cobra.ExactArgs(1),
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

			if err := store.RestoreCategory(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to restore category: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Restored category %q", args[0])))
			return nil
		},
	}
}

func reorderCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <name>...",
		Short: "Move categories to the front of the order",
		Long: `Move the named categories to the front of the order, in the order given.
Categories not named keep their relative order after them.`,
		Args: cobra.MinimumNArgs(1),
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

			if err := store.ReorderCategories(ctx, args); err != nil {
				return fmt.Errorf("failed to reorder categories: %w", err)
			}

			categories, err := store.GetAllCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCategories(categories))
			return nil
		},
	}
}
