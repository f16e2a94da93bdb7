package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskdeck/internal/account"
	"github.com/Joseda-hg/taskdeck/internal/prompt"
)

var (
	userEmail string
	userName  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, err := valueOrPrompt(userEmail, "Email: ")
		if err != nil {
			return err
		}
		name, err := valueOrPrompt(userName, "Name: ")
		if err != nil {
			return err
		}
		password, err := prompt.Password("Password: ")
		if err != nil {
			return err
		}
		confirm, err := prompt.Password("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		user, err := current.accounts.Register(cmd.Context(), account.RegisterInput{Email: email, Password: password, Name: name})
		if err != nil {
			return err
		}
		current.logger.Infow("user registered", "user_id", user.ID)
		successf("Welcome, %s", user.Name)
		return nil
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, err := valueOrPrompt(userEmail, "Email: ")
		if err != nil {
			return err
		}
		password, err := prompt.Password("Password: ")
		if err != nil {
			return err
		}
		user, err := current.accounts.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		successf("Signed in as %s", user.Email)
		return nil
	},
}

var userLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := current.accounts.Logout(cmd.Context()); err != nil {
			return err
		}
		successf("Signed out")
		return nil
	},
}

var userWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		user, ok, err := current.accounts.Current(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println(faint("Not signed in."))
			return nil
		}
		printKV("Name", user.Name)
		printKV("Email", user.Email)
		printKV("ID", user.ID)
		printKV("Since", user.CreatedAt.Local().Format(dateLayout))
		return nil
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		user, err := current.accounts.RequireCurrent(ctx)
		if err != nil {
			return err
		}
		oldPassword, err := prompt.Password("Current password: ")
		if err != nil {
			return err
		}
		newPassword, err := prompt.Password("New password: ")
		if err != nil {
			return err
		}
		if err := current.accounts.ChangePassword(ctx, user.ID, oldPassword, newPassword); err != nil {
			return err
		}
		successf("Password changed")
		return nil
	},
}

var userProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your display name",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		user, err := current.accounts.RequireCurrent(ctx)
		if err != nil {
			return err
		}
		name, err := valueOrPrompt(userName, "Name: ")
		if err != nil {
			return err
		}
		updated, err := current.accounts.UpdateProfile(ctx, user.ID, name)
		if err != nil {
			return err
		}
		successf("Name set to %s", updated.Name)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete your account and every task in it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		user, err := current.accounts.RequireCurrent(ctx)
		if err != nil {
			return err
		}
		password, err := prompt.Password("Password: ")
		if err != nil {
			return err
		}
		if err := current.accounts.DeleteAccount(ctx, user.ID, password); err != nil {
			return err
		}
		current.logger.Infow("user deleted", "user_id", user.ID)
		successf("Account deleted")
		return nil
	},
}

func valueOrPrompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return prompt.Line(label)
}

func init() {
	userRegisterCmd.Flags().StringVar(&userEmail, "email", "", "account email")
	userRegisterCmd.Flags().StringVar(&userName, "name", "", "display name")
	userLoginCmd.Flags().StringVar(&userEmail, "email", "", "account email")
	userProfileCmd.Flags().StringVar(&userName, "name", "", "display name")

	userCmd.AddCommand(userRegisterCmd, userLoginCmd, userLogoutCmd, userWhoamiCmd, userPasswdCmd, userProfileCmd, userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}
