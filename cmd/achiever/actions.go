package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evanschultz/achiever/internal/domain"
)

func newActionCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Manage actions under a target",
	}
	cmd.AddCommand(newActionAddCmd(c))
	cmd.AddCommand(newActionUpdateCmd(c))
	cmd.AddCommand(newActionDeleteCmd(c))
	return cmd
}

func newActionAddCmd(c *cli) *cobra.Command {
	var title, urgency, impact string
	cmd := &cobra.Command{
		Use:   "add <target>",
		Short: "Add an action to a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "action add", func(s *session) error {
				target, err := resolveTarget(s.store, args[0])
				if err != nil {
					return err
				}
				action, err := domain.NewAction(domain.ActionInput{
					ID:      c.newID(),
					Title:   title,
					Urgency: domain.Level(urgency),
					Impact:  domain.Level(impact),
				})
				if err != nil {
					return err
				}
				if err := s.store.AddAction(target.ID, action); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added action %s (priority %s)\n", action.ID, action.Priority())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "action title")
	cmd.Flags().StringVar(&urgency, "urgency", string(domain.LevelMedium), "low|medium|high")
	cmd.Flags().StringVar(&impact, "impact", string(domain.LevelMedium), "low|medium|high")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newActionUpdateCmd(c *cli) *cobra.Command {
	var title, urgency, impact string
	cmd := &cobra.Command{
		Use:   "update <target> <action>",
		Short: "Edit an action's title or levels",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "action update", func(s *session) error {
				target, action, err := actionPath(s.store, args[0], args[1])
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				if !flags.Changed("title") && !flags.Changed("urgency") && !flags.Changed("impact") {
					return fmt.Errorf("nothing to update")
				}
				if flags.Changed("title") {
					if strings.TrimSpace(title) == "" {
						return domain.ErrInvalidTitle
					}
					action.Title = strings.TrimSpace(title)
				}
				if flags.Changed("urgency") {
					if action.Urgency, err = domain.ParseLevel(urgency); err != nil {
						return fmt.Errorf("urgency: %w", err)
					}
				}
				if flags.Changed("impact") {
					if action.Impact, err = domain.ParseLevel(impact); err != nil {
						return fmt.Errorf("impact: %w", err)
					}
				}
				if err := s.store.UpdateAction(target.ID, action); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated action %s (priority %s)\n", action.ID, action.Priority())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&urgency, "urgency", "", "low|medium|high")
	cmd.Flags().StringVar(&impact, "impact", "", "low|medium|high")
	return cmd
}

func newActionDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <target> <action>",
		Short: "Delete an action with its steps, tasks and obstacles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "action delete", func(s *session) error {
				target, action, err := actionPath(s.store, args[0], args[1])
				if err != nil {
					return err
				}
				if err := s.store.DeleteAction(target.ID, action.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted action %s\n", action.ID)
				return nil
			})
		},
	}
}

func newStepCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Manage steps under an action",
	}
	cmd.AddCommand(newStepAddCmd(c))
	cmd.AddCommand(newStepUpdateCmd(c))
	cmd.AddCommand(newStepDeleteCmd(c))
	return cmd
}

func newStepAddCmd(c *cli) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <target> <action>",
		Short: "Add a step to an action",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "step add", func(s *session) error {
				target, action, err := actionPath(s.store, args[0], args[1])
				if err != nil {
					return err
				}
				step, err := domain.NewStep(c.newID(), description)
				if err != nil {
					return err
				}
				if err := s.store.AddStep(target.ID, action.ID, step); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added step %s\n", step.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "step description")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newStepUpdateCmd(c *cli) *cobra.Command {
	var (
		description string
		completed   bool
	)
	cmd := &cobra.Command{
		Use:   "update <target> <action> <step>",
		Short: "Edit a step; --completed only matters for steps without tasks",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "step update", func(s *session) error {
				target, action, step, err := stepPath(s.store, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				if !flags.Changed("description") && !flags.Changed("completed") {
					return fmt.Errorf("nothing to update")
				}
				if flags.Changed("description") {
					if strings.TrimSpace(description) == "" {
						return domain.ErrInvalidDescription
					}
					step.Description = strings.TrimSpace(description)
				}
				if flags.Changed("completed") {
					step.Completed = completed
				}
				if err := s.store.UpdateStep(target.ID, action.ID, step); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated step %s\n", step.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark the step done")
	return cmd
}

func newStepDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <target> <action> <step>",
		Short: "Delete a step and its tasks",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "step delete", func(s *session) error {
				target, action, step, err := stepPath(s.store, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				if err := s.store.DeleteStep(target.ID, action.ID, step.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted step %s\n", step.ID)
				return nil
			})
		},
	}
}
