package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-journal-keeper/internal/service"
)

func newVersionCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationOffline: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := service.NewAppInfoService(a.buildInfo, nil)
			fmt.Fprint(cmd.OutOrStdout(), info.GetBuildInfo(cmd.Context()).String())
			return nil
		},
	}
}
