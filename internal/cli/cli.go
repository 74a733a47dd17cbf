package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-keeper/internal/config"
	"github.com/MKhiriev/go-journal-keeper/internal/service"
	"github.com/MKhiriev/go-journal-keeper/models"
)

// annotationOffline marks commands that run without opening the store.
const annotationOffline = "offline"

// Opener builds the services for a loaded configuration. The returned closer
// releases everything the opener acquired.
type Opener func(ctx context.Context, cfg *config.StructuredConfig) (*service.Services, io.Closer, error)

// App holds the state shared by all commands of one invocation.
type App struct {
	open      Opener
	prompter  Prompter
	buildInfo models.AppBuildInfo

	flags *config.StructuredConfig
	user  string

	services *service.Services
	closer   io.Closer
}

// CLI is the journal command tree bound to one App.
type CLI struct {
	app  *App
	root *cobra.Command
}

// New builds the command tree. Services are opened lazily, once flags are
// parsed, by the root's pre-run hook.
func New(open Opener, prompter Prompter, buildInfo models.AppBuildInfo) *CLI {
	a := &App{
		open:      open,
		prompter:  prompter,
		buildInfo: buildInfo,
	}

	root := &cobra.Command{
		Use:               "journal",
		Short:             "Encrypted personal journal",
		Long:              `Keeps journal entries encrypted at rest and searchable through a blind keyword index.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	a.flags = config.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&a.user, "user", "u", "", "Journal username (prompted when empty)")

	root.AddCommand(
		newRegisterCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newSearchCmd(a),
		newPasswdCmd(a),
		newResetCmd(a),
		newQuestionCmd(a),
		newVersionCmd(a),
	)

	return &CLI{app: a, root: root}
}

// Command returns the root command, mainly so tests can set args and
// output streams.
func (c *CLI) Command() *cobra.Command {
	return c.root
}

// Execute runs the command line and releases the services afterwards, also
// when the command failed.
func (c *CLI) Execute(ctx context.Context) error {
	defer c.app.close()
	return c.root.ExecuteContext(ctx)
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationOffline] != "" || cmd.Name() == "help" {
		return nil
	}

	cfg, err := config.Load(a.flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.services, a.closer, err = a.open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	return nil
}

func (a *App) close() {
	if a.closer != nil {
		_ = a.closer.Close()
		a.closer = nil
	}
}
