package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-journal-keeper/internal/cli"
	"github.com/MKhiriev/go-journal-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	journal := cli.New(cli.Open(buildInfo), cli.NewTerminalPrompter(os.Stdin, os.Stderr), buildInfo)
	err := journal.Execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "journal: %s\n", cli.Describe(err))
		os.Exit(1)
	}
}
