package cli

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

// NewRootCommand builds the majorcompass command tree. Without a
// subcommand it serves HTTP.
func NewRootCommand() *cobra.Command {
	serve := newServeCommand()
	cmd := &cobra.Command{
		Use:   "majorcompass",
		Short: "Career and major questionnaire backend",
		Long: `MajorCompass walks a user through a five step questionnaire about
interests, work style, skills, career values and academic strengths, and
turns the answers into ranked major recommendations.

Progress is saved after every step so an unfinished questionnaire can be
resumed later.`,
		Version:      Version,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newTakeCommand())

	return cmd
}
