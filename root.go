package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/marquee/internal/config"
)

// options are the command line flags.
type options struct {
	start   time.Duration
	backend string
	config  string
	title   string
	poster  string
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "marquee <uri>",
		Short: "Play a media file or stream in the terminal",
		Long: "Play a local file or a network stream with GStreamer or mpv.\n" +
			"Playback resumes where it was left unless --start is given.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts, cmd.Flags().Changed("start"))
		},
	}

	flags := cmd.Flags()
	flags.DurationVarP(&opts.start, "start", "s", 0, "Start position (e.g. 1m30s); disables resume")
	flags.StringVarP(&opts.backend, "backend", "b", "", "Playback backend: "+config.BackendGStreamer+" or "+config.BackendMpv)
	flags.StringVarP(&opts.config, "config", "c", "", "Configuration file path")
	flags.StringVar(&opts.title, "title", "", "Title shown in the player and media keys")
	flags.StringVar(&opts.poster, "poster", "", "Poster image path or URL")

	return cmd
}
