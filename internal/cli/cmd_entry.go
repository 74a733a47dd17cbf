package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-keeper/models"
)

// auxFlags are shared by add and edit.
type auxFlags struct {
	file   string
	format string
}

func (f *auxFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "aux-file", "", "Attach the file as the auxiliary payload")
	cmd.Flags().StringVar(&f.format, "aux-format", "", "Format tag of the payload (default: file extension)")
}

// load returns nil when no file was given.
func (f *auxFlags) load() (*models.AuxPayload, error) {
	if f.file == "" {
		return nil, nil
	}

	data, err := os.ReadFile(f.file)
	if err != nil {
		return nil, fmt.Errorf("read aux file: %w", err)
	}

	format := f.format
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(f.file), ".")
	}
	return &models.AuxPayload{Format: format, Data: data}, nil
}

func readBody(cmd *cobra.Command) (string, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func newAddCmd(a *App) *cobra.Command {
	var (
		body string
		aux  auxFlags
	)

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Write a new entry",
		Long:  `Writes a new entry. Without --body the body is read from standard input.`,
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&body, "body", "b", "", "Entry body")
	aux.bind(cmd)

	cmd.RunE = a.withSession(func(cmd *cobra.Command, args []string, s *models.Session) error {
		if !cmd.Flags().Changed("body") {
			var err error
			if body, err = readBody(cmd); err != nil {
				return err
			}
		}
		payload, err := aux.load()
		if err != nil {
			return err
		}

		id, err := a.services.JournalService.AddEntry(cmd.Context(), s, args[0], body, payload)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Entry %d added.\n", id)
		return nil
	})
	return cmd
}

func newEditCmd(a *App) *cobra.Command {
	var (
		title     string
		body      string
		bodyStdin bool
		clearAux  bool
		aux       auxFlags
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the title, body or payload of an entry",
		Long: `Changes an entry. Fields without a flag keep their value; the body is
replaced by --body or, with --stdin, by standard input.`,
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "New body")
	cmd.Flags().BoolVar(&bodyStdin, "stdin", false, "Read the new body from standard input")
	cmd.Flags().BoolVar(&clearAux, "clear-aux", false, "Remove the auxiliary payload")
	aux.bind(cmd)
	cmd.MarkFlagsMutuallyExclusive("aux-file", "clear-aux")

	cmd.RunE = a.withSession(func(cmd *cobra.Command, args []string, s *models.Session) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		current, err := a.services.JournalService.GetEntry(cmd.Context(), s, id)
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("title") {
			title = current.Title
		}
		switch {
		case cmd.Flags().Changed("body"):
		case bodyStdin:
			if body, err = readBody(cmd); err != nil {
				return err
			}
		default:
			body = current.Body
		}

		payload, err := aux.load()
		if err != nil {
			return err
		}
		if clearAux {
			payload = &models.AuxPayload{}
		}

		if err := a.services.JournalService.UpdateEntry(cmd.Context(), s, id, title, body, payload); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Entry %d updated.\n", id)
		return nil
	})
	return cmd
}

func newRemoveCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	cmd.RunE = a.withSession(func(cmd *cobra.Command, args []string, s *models.Session) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		if !yes {
			ok, err := confirm(a.prompter, fmt.Sprintf("Delete entry %d?", id))
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}
		}

		if err := a.services.JournalService.DeleteEntry(cmd.Context(), s, id); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Entry %d deleted.\n", id)
		return nil
	})
	return cmd
}
