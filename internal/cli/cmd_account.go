package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-keeper/internal/service"
)

func newPasswdCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the password and re-encrypt every entry",
		Long: `Changes the password. A backup of the store is written first, then every
entry is re-encrypted under a new key in one transaction. On any failure the
old password stays valid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			auth := a.services.AuthService

			username, err := a.username()
			if err != nil {
				return err
			}
			current, err := a.prompter.ReadSecret("Current password: ")
			if err != nil {
				return err
			}

			s, err := auth.Login(ctx, username, current)
			if err != nil {
				return err
			}
			defer auth.Logout(s)

			password, err := readNewPassword(a.prompter, "New password")
			if err != nil {
				return err
			}

			next, err := auth.ChangePassword(ctx, s, current, password)
			if err != nil {
				if errors.Is(err, service.ErrBackupFailed) || errors.Is(err, service.ErrAuthenticationFailure) {
					return err
				}
				return fmt.Errorf("%w: %w", errPasswordUnchanged, err)
			}
			auth.Logout(next)

			fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
			return nil
		},
	}
}

func newResetCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset a forgotten password, deleting every entry",
		Long: `Resets the password after the security question is answered. Entries
cannot be decrypted without the old password, so all of them are deleted.
A backup of the store is written first.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		auth := a.services.AuthService
		out := cmd.OutOrStdout()

		username, err := a.username()
		if err != nil {
			return err
		}
		question, err := auth.GetSecurityQuestion(ctx, username)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Security question: %s\n", question)
		answer, err := a.prompter.ReadSecret("Answer: ")
		if err != nil {
			return err
		}

		if !yes {
			fmt.Fprintf(out, "All entries of %q will be deleted.\n", username)
			ok, err := confirm(a.prompter, "Continue?")
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}
		}

		password, err := readNewPassword(a.prompter, "New password")
		if err != nil {
			return err
		}

		if err := auth.ResetPassword(ctx, username, answer, password); err != nil {
			if errors.Is(err, service.ErrAuthenticationFailure) {
				return fmt.Errorf("%w: %w", errWrongAnswer, err)
			}
			return err
		}

		fmt.Fprintln(out, "Password reset. Previous entries were deleted.")
		return nil
	}
	return cmd
}

func newQuestionCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "question",
		Short: "Print the security question of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			question, err := a.services.AuthService.GetSecurityQuestion(cmd.Context(), username)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), question)
			return nil
		},
	}
}
