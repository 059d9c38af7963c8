package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evanschultz/achiever/internal/domain"
)

func newTaskCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks under a step",
	}
	cmd.AddCommand(newTaskAddCmd(c))
	cmd.AddCommand(newTaskUpdateCmd(c))
	cmd.AddCommand(newTaskDeadlineCmd(c))
	cmd.AddCommand(newTaskToggleCmd(c))
	cmd.AddCommand(newTaskDeleteCmd(c))
	return cmd
}

func newTaskAddCmd(c *cli) *cobra.Command {
	var description, deadline string
	cmd := &cobra.Command{
		Use:   "add <target> <action> <step>",
		Short: "Add a task to a step",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "task add", func(s *session) error {
				target, action, step, err := stepPath(s.store, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				in := domain.TaskInput{ID: c.newID(), Description: description}
				if strings.TrimSpace(deadline) != "" {
					ts, err := parseDeadline(deadline)
					if err != nil {
						return err
					}
					in.Deadline = &ts
				}
				task, err := domain.NewTask(in)
				if err != nil {
					return err
				}
				if err := s.store.AddTask(target.ID, action.ID, step.ID, task); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added task %s\n", task.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline as YYYY-MM-DD or RFC3339")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newTaskUpdateCmd(c *cli) *cobra.Command {
	var (
		description string
		completed   bool
	)
	cmd := &cobra.Command{
		Use:   "update <target> <action> <step> <task>",
		Short: "Edit a task's description or completion",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "task update", func(s *session) error {
				target, action, step, err := stepPath(s.store, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				task, err := resolveTask(step, args[3])
				if err != nil {
					return err
				}
				var patch domain.TaskPatch
				if cmd.Flags().Changed("description") {
					description = strings.TrimSpace(description)
					if description == "" {
						return domain.ErrInvalidDescription
					}
					patch.Description = &description
				}
				if cmd.Flags().Changed("completed") {
					patch.Completed = &completed
				}
				if patch.Description == nil && patch.Completed == nil {
					return fmt.Errorf("nothing to update")
				}
				if err := s.store.UpdateTask(target.ID, action.ID, step.ID, task.ID, patch); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated task %s\n", task.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark the task done")
	return cmd
}

func newTaskDeadlineCmd(c *cli) *cobra.Command {
	var clearDeadline bool
	cmd := &cobra.Command{
		Use:   "deadline <target> <action> <step> <task> [date]",
		Short: "Set or clear a task deadline",
		Args:  cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearDeadline == (len(args) == 5) {
				return fmt.Errorf("pass either a date or --clear")
			}
			return c.withSession(cmd, "task deadline", func(s *session) error {
				target, action, step, err := stepPath(s.store, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				task, err := resolveTask(step, args[3])
				if err != nil {
					return err
				}
				if clearDeadline {
					if err := s.store.UpdateTaskDeadline(target.ID, action.ID, step.ID, task.ID, nil); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleared deadline on task %s\n", task.ID)
					return nil
				}
				ts, err := parseDeadline(args[4])
				if err != nil {
					return err
				}
				if err := s.store.UpdateTaskDeadline(target.ID, action.ID, step.ID, task.ID, &ts); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "task %s due %s\n", task.ID, ts.Format(time.DateOnly))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearDeadline, "clear", false, "remove the deadline")
	return cmd
}

func newTaskToggleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <target> <action> <step> <task>",
		Short: "Flip a task between done and open",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "task toggle", func(s *session) error {
				target, action, step, err := stepPath(s.store, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				task, err := resolveTask(step, args[3])
				if err != nil {
					return err
				}
				if err := s.store.ToggleTask(target.ID, action.ID, step.ID, task.ID); err != nil {
					return err
				}
				progress, err := s.store.ActionProgress(target.ID, action.ID)
				if err != nil {
					return err
				}
				state := "done"
				if task.Completed {
					state = "open"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "task %s %s, action at %d%%\n", task.ID, state, progress)
				return nil
			})
		},
	}
}

func newTaskDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <target> <action> <step> <task>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "task delete", func(s *session) error {
				target, action, step, err := stepPath(s.store, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				task, err := resolveTask(step, args[3])
				if err != nil {
					return err
				}
				if err := s.store.DeleteTask(target.ID, action.ID, step.ID, task.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted task %s\n", task.ID)
				return nil
			})
		},
	}
}

func newObstacleCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obstacle",
		Short: "Track obstacles blocking an action",
	}
	cmd.AddCommand(newObstacleAddCmd(c))
	cmd.AddCommand(newObstacleUpdateCmd(c))
	cmd.AddCommand(newObstacleResolveCmd(c))
	cmd.AddCommand(newObstacleUnresolveCmd(c))
	cmd.AddCommand(newObstacleDeleteCmd(c))
	return cmd
}

func newObstacleAddCmd(c *cli) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <target> <action>",
		Short: "Record an obstacle on an action",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "obstacle add", func(s *session) error {
				target, action, err := actionPath(s.store, args[0], args[1])
				if err != nil {
					return err
				}
				obstacle, err := domain.NewObstacle(c.newID(), description)
				if err != nil {
					return err
				}
				if err := s.store.AddObstacle(target.ID, action.ID, obstacle); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added obstacle %s\n", obstacle.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what is in the way")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newObstacleUpdateCmd(c *cli) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "update <target> <action> <obstacle>",
		Short: "Edit an obstacle's description",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "obstacle update", func(s *session) error {
				target, action, err := actionPath(s.store, args[0], args[1])
				if err != nil {
					return err
				}
				obstacle, err := resolveObstacle(action, args[2])
				if err != nil {
					return err
				}
				description = strings.TrimSpace(description)
				if description == "" {
					return domain.ErrInvalidDescription
				}
				patch := domain.ObstaclePatch{Description: &description}
				if err := s.store.UpdateObstacle(target.ID, action.ID, obstacle.ID, patch); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "updated obstacle %s\n", obstacle.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "new description")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newObstacleResolveCmd(c *cli) *cobra.Command {
	var resolution string
	cmd := &cobra.Command{
		Use:   "resolve <target> <action> <obstacle>",
		Short: "Mark an obstacle resolved",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "obstacle resolve", func(s *session) error {
				target, action, err := actionPath(s.store, args[0], args[1])
				if err != nil {
					return err
				}
				obstacle, err := resolveObstacle(action, args[2])
				if err != nil {
					return err
				}
				resolution = strings.TrimSpace(resolution)
				if resolution == "" {
					return domain.ErrInvalidResolution
				}
				if err := s.store.ResolveObstacle(target.ID, action.ID, obstacle.ID, resolution, c.now()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "resolved obstacle %s\n", obstacle.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&resolution, "resolution", "", "how the obstacle was overcome")
	_ = cmd.MarkFlagRequired("resolution")
	return cmd
}

func newObstacleUnresolveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "unresolve <target> <action> <obstacle>",
		Short: "Reopen a resolved obstacle",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "obstacle unresolve", func(s *session) error {
				target, action, err := actionPath(s.store, args[0], args[1])
				if err != nil {
					return err
				}
				obstacle, err := resolveObstacle(action, args[2])
				if err != nil {
					return err
				}
				if err := s.store.UnresolveObstacle(target.ID, action.ID, obstacle.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reopened obstacle %s\n", obstacle.ID)
				return nil
			})
		},
	}
}

func newObstacleDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <target> <action> <obstacle>",
		Short: "Delete an obstacle",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd, "obstacle delete", func(s *session) error {
				target, action, err := actionPath(s.store, args[0], args[1])
				if err != nil {
					return err
				}
				obstacle, err := resolveObstacle(action, args[2])
				if err != nil {
					return err
				}
				if err := s.store.DeleteObstacle(target.ID, action.ID, obstacle.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted obstacle %s\n", obstacle.ID)
				return nil
			})
		},
	}
}
