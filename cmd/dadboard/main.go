package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("reported")

// rootFlags are shared by every command that loads the configuration.
type rootFlags struct {
	configPath string
	gamesPath  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "dadboard",
		Short:         "DadBoard, a LAN readiness dashboard for the household's gaming PCs",
		Long:          "DadBoard polls a status file on each gaming PC, shows which PCs are ready to play and can launch a game or accept an invite on them remotely.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "shared/config.json", "path to the dashboard config file")
	cmd.PersistentFlags().StringVarP(&flags.gamesPath, "games", "g", "controller/games.json", "path to the game list")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newStatusCmd(flags))
	cmd.AddCommand(newLaunchCmd(flags))
	cmd.AddCommand(newInviteCmd(flags))
	cmd.AddCommand(newActionsCmd(flags))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dadboard %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
