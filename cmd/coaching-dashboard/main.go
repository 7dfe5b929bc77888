package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dowjanes/coaching-dashboard/pkg/sentry"
)

const flushTimeout = 2 * time.Second

// Version information - can be set at build time
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	debug      bool
	token      string
}

func main() {
	defer sentry.RecoverAndCapture(slog.Default())

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		sentry.Flush(flushTimeout)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "coaching-dashboard",
		Short:         "Daily coaching appointments enriched with CRM context",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("COACHING_CONFIG"), "path to configuration file (defaults apply when empty)")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("GOOGLE_ACCESS_TOKEN"), "Google Calendar access token (env GOOGLE_ACCESS_TOKEN)")

	root.AddCommand(dayCmd(flags))
	root.AddCommand(calendarsCmd(flags))
	root.AddCommand(watchCmd(flags))
	root.AddCommand(serveCmd(flags))
	root.AddCommand(versionCmd())

	return root
}

func (f *globalFlags) requireToken() (string, error) {
	if f.token == "" {
		return "", fmt.Errorf("missing Google access token: pass --token or set GOOGLE_ACCESS_TOKEN")
	}
	return f.token, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Coaching Dashboard %s\n", Version)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
			fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
		},
	}
}
