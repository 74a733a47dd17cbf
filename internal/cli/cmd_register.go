package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create a new journal account",
		Long: `Creates an account protected by a password and a security question.
The answer to the question allows a password reset, which deletes all entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, err := a.username()
			if err != nil {
				return err
			}
			password, err := readNewPassword(a.prompter, "Password")
			if err != nil {
				return err
			}
			question, err := a.prompter.ReadLine("Security question: ")
			if err != nil {
				return err
			}
			answer, err := a.prompter.ReadSecret("Security answer: ")
			if err != nil {
				return err
			}

			if err := a.services.AuthService.Register(cmd.Context(), username, password, question, answer); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account %q created.\n", username)
			return nil
		},
	}
}
