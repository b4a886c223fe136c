package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/agentx-labs/stackboot/internal/branding"
	"github.com/agentx-labs/stackboot/internal/config"
	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/agentx-labs/stackboot/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagDebug     bool
	flagLogFormat string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Stream tool output and log at debug level")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: text or json")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` generates multi-ecosystem project skeletons from a declarative
template. Each workspace in the template is checked for toolchain prerequisites,
scaffolded with the ecosystem's own tooling, given its extra dependencies and
finally reshaped with file-tree changesets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		s := settings(cmd)

		level := "warn"
		if s.Debug {
			level = "debug"
		}
		logger := ctxlog.New(level, s.LogFormat, cmd.ErrOrStderr())
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

// settings returns the config values with persistent flags applied on top.
func settings(cmd *cobra.Command) config.Settings {
	s := config.Current()
	if cmd.Flags().Changed("debug") {
		s.Debug = flagDebug
	}
	if cmd.Flags().Changed("log-format") {
		s.LogFormat = flagLogFormat
	}
	return s
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		// Run errors have already been reported with their hints.
		var re *orchestrator.RunError
		if !errors.As(err, &re) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return err
}
