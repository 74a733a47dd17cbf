package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/creachadair/atomicfile"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-keeper/models"
)

const timeLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func printHeaders(w io.Writer, headers []models.EntryHeader) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTITLE")
	for _, h := range headers {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", h.ID, formatTime(h.CreatedAt), h.Title)
	}
	return tw.Flush()
}

func newListCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entries, newest first",
		Args:    cobra.NoArgs,
	}

	cmd.RunE = a.withSession(func(cmd *cobra.Command, _ []string, s *models.Session) error {
		headers, err := a.services.JournalService.ListEntries(cmd.Context(), s)
		if err != nil {
			return err
		}
		if len(headers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No entries.")
			return nil
		}
		return printHeaders(cmd.OutOrStdout(), headers)
	})
	return cmd
}

func newShowCmd(a *App) *cobra.Command {
	var auxOut string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print an entry",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&auxOut, "aux-out", "o", "", "Write the auxiliary payload to this file")

	cmd.RunE = a.withSession(func(cmd *cobra.Command, args []string, s *models.Session) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		e, err := a.services.JournalService.GetEntry(cmd.Context(), s, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "#%d %s\n", e.ID, e.Title)
		fmt.Fprintf(out, "Created: %s\nUpdated: %s\n", formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
		if e.Aux != nil {
			fmt.Fprintf(out, "Attachment: %s, %d bytes\n", e.Aux.Format, len(e.Aux.Data))
		}
		fmt.Fprintf(out, "\n%s\n", e.Body)

		if auxOut == "" {
			return nil
		}
		if e.Aux == nil {
			return fmt.Errorf("entry %d has no attachment", id)
		}
		return atomicfile.WriteData(auxOut, e.Aux.Data, 0o600)
	})
	return cmd
}

func newSearchCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search WORD...",
		Short: "Find entries containing every word",
		Long: `Finds entries whose title or body contains every given word. Words are
matched whole and case-insensitively; "rain" does not match "rained".`,
		Args: cobra.MinimumNArgs(1),
	}

	cmd.RunE = a.withSession(func(cmd *cobra.Command, args []string, s *models.Session) error {
		headers, err := a.services.JournalService.SearchEntries(cmd.Context(), s, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if len(headers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
			return nil
		}
		return printHeaders(cmd.OutOrStdout(), headers)
	})
	return cmd
}
