package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/evanschultz/achiever/internal/domain"
)

func newUserCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Register, sign in and inspect local accounts",
	}
	cmd.AddCommand(newUserRegisterCmd(c))
	cmd.AddCommand(newUserSignInCmd(c))
	cmd.AddCommand(newUserSignOutCmd(c))
	cmd.AddCommand(newUserWhoamiCmd(c))
	cmd.AddCommand(newUserListCmd(c))
	return cmd
}

func newUserRegisterCmd(c *cli) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in as it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "user register", func(s *session) error {
				user, err := domain.NewUser(domain.UserInput{
					ID:       c.newID(),
					Email:    email,
					Password: password,
					Name:     name,
				}, c.now())
				if err != nil {
					return err
				}
				user = s.store.RegisterUser(user)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", user.DisplayName(), user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (stored as plaintext)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserSignInCmd(c *cli) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "user signin", func(s *session) error {
				user, ok := s.store.SignIn(email, password)
				if !ok {
					return errors.New("invalid email or password")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", user.DisplayName())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserSignOutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "user signout", func(s *session) error {
				s.store.SignOut()
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newUserWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "user whoami", func(s *session) error {
				user, err := currentUser(s.store)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", user.DisplayName(), user.Email, user.ID)
				return nil
			})
		},
	}
}

func newUserListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd, "user list", func(s *session) error {
				users := s.store.Users()
				if len(users) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No users registered.")
					return nil
				}
				current, _ := s.store.CurrentUser()
				t := table.New().
					Border(lipgloss.RoundedBorder()).
					Headers("", "ID", "Name", "Email", "Registered")
				for _, user := range users {
					marker := ""
					if user.ID == current.ID {
						marker = "*"
					}
					t.Row(marker, user.ID, user.Name, user.Email, user.CreatedAt.Format("2006-01-02"))
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.String())
				return nil
			})
		},
	}
}
