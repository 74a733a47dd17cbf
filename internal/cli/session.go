package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-keeper/internal/service"
	"github.com/MKhiriev/go-journal-keeper/models"
)

// sessionRunE is the RunE of a command that needs an unlocked journal.
type sessionRunE func(cmd *cobra.Command, args []string, s *models.Session) error

func (a *App) username() (string, error) {
	if a.user != "" {
		return a.user, nil
	}
	name, err := a.prompter.ReadLine("Username: ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// withSession logs in before fn and logs out after it.
func (a *App) withSession(fn sessionRunE) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		username, err := a.username()
		if err != nil {
			return err
		}
		password, err := a.prompter.ReadSecret("Password: ")
		if err != nil {
			return err
		}

		s, err := a.services.AuthService.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		defer a.services.AuthService.Logout(s)

		return fn(cmd, args, s)
	}
}

func parseEntryID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: entry id %q is not a positive number", service.ErrValidation, arg)
	}
	return id, nil
}
