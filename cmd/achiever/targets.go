package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evanschultz/achiever/internal/app"
	"github.com/evanschultz/achiever/internal/domain"
)

func newTargetCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage the signed-in user's targets",
	}
	cmd.AddCommand(newTargetAddCmd(c))
	cmd.AddCommand(newTargetUpdateCmd(c))
	cmd.AddCommand(newTargetDeleteCmd(c))
	cmd.AddCommand(newTargetListCmd(c))
	cmd.AddCommand(newTargetShowCmd(c))
	return cmd
}

func newTargetAddCmd(c *cli) *cobra.Command {
	var in domain.TargetInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "target add", func(s *session) error {
				user, err := currentUser(s.store)
				if err != nil {
					return err
				}
				if err := validateCategory(s, in.CategoryID, in.SubcategoryID); err != nil {
					return err
				}
				in.ID = c.newID()
				in.UserID = user.ID
				target, err := domain.NewTarget(in, c.now())
				if err != nil {
					return err
				}
				if err := s.store.AddTarget(target); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added target %s\n", target.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "target title")
	cmd.Flags().StringVar(&in.Description, "description", "", "markdown description")
	cmd.Flags().StringVar(&in.CategoryID, "category", "", "category id")
	cmd.Flags().StringVar(&in.SubcategoryID, "subcategory", "", "subcategory id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTargetUpdateCmd(c *cli) *cobra.Command {
	var title, description, category, subcategory string
	cmd := &cobra.Command{
		Use:   "update <target>",
		Short: "Edit target metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "target update", func(s *session) error {
				target, err := resolveTarget(s.store, args[0])
				if err != nil {
					return err
				}
				var patch domain.TargetPatch
				flags := cmd.Flags()
				if flags.Changed("title") {
					patch.Title = &title
				}
				if flags.Changed("description") {
					patch.Description = &description
				}
				if flags.Changed("category") {
					patch.CategoryID = &category
				}
				if flags.Changed("subcategory") {
					patch.SubcategoryID = &subcategory
				}
				if patch.Empty() {
					return fmt.Errorf("nothing to update")
				}
				next := patch.Apply(target)
				if err := validateCategory(s, next.CategoryID, next.SubcategoryID); err != nil {
					return err
				}
				if err := s.store.UpdateTarget(target.ID, patch); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated target %s\n", target.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new markdown description")
	cmd.Flags().StringVar(&category, "category", "", "new category id")
	cmd.Flags().StringVar(&subcategory, "subcategory", "", "new subcategory id")
	return cmd
}

func newTargetDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <target>",
		Short: "Delete a target with everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "target delete", func(s *session) error {
				target, err := resolveTarget(s.store, args[0])
				if err != nil {
					return err
				}
				if err := s.store.DeleteTarget(target.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted target %s\n", target.ID)
				return nil
			})
		},
	}
}

func newTargetListCmd(c *cli) *cobra.Command {
	var search, category, sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List targets, optionally filtered and sorted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "target list", func(s *session) error {
				user, err := currentUser(s.store)
				if err != nil {
					return err
				}
				sort, err := app.ParseTargetSort(sortBy)
				if err != nil {
					return err
				}
				targets := s.store.QueryTargets(app.TargetQuery{
					UserID:     user.ID,
					Search:     search,
					CategoryID: category,
					Sort:       sort,
				})
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), s.renderer.TargetList(targets))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "match title or description (case-insensitive)")
	cmd.Flags().StringVar(&category, "category", "", "only this category id")
	cmd.Flags().StringVar(&sortBy, "sort", string(app.SortRecent), "recent|progress|actions")
	return cmd
}

func newTargetShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <target>",
		Short: "Show a target with its action tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "target show", func(s *session) error {
				target, err := resolveTarget(s.store, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), s.renderer.Target(target))
				return nil
			})
		},
	}
}

// validateCategory checks category and subcategory ids against the configured catalog.
func validateCategory(s *session, categoryID, subcategoryID string) error {
	if categoryID == "" {
		if subcategoryID != "" {
			return fmt.Errorf("subcategory %q needs a category", subcategoryID)
		}
		return nil
	}
	category, ok := s.env.cfg.Categories.Find(categoryID)
	if !ok {
		return fmt.Errorf("unknown category %q", categoryID)
	}
	if subcategoryID == "" {
		return nil
	}
	for _, sub := range category.Subcategories {
		if sub.ID == subcategoryID {
			return nil
		}
	}
	return fmt.Errorf("unknown subcategory %q in category %q", subcategoryID, categoryID)
}
