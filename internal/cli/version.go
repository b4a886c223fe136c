package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agentx-labs/stackboot/internal/branding"
	"github.com/agentx-labs/stackboot/internal/template"
	"github.com/spf13/cobra"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	rootCmd.AddCommand(versionCmd)
}

// versionInfo describes the running binary and what it can scaffold.
type versionInfo struct {
	Version    string   `json:"version"`
	Commit     string   `json:"commit"`
	Date       string   `json:"date"`
	Go         string   `json:"go"`
	Platform   string   `json:"platform"`
	Ecosystems []string `json:"ecosystems"`
}

func currentVersion() versionInfo {
	info := versionInfo{
		Version:  buildVersion,
		Commit:   buildCommit,
		Date:     buildDate,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	for _, eco := range template.AllEcosystems() {
		info.Ecosystems = append(info.Ecosystems, string(eco))
	}
	return info
}

func (v versionInfo) print(w io.Writer) {
	fmt.Fprintf(w, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), v.Version, v.Commit, v.Date)
	fmt.Fprintf(w, "  %-11s %s %s\n", "go:", v.Go, v.Platform)
	fmt.Fprintf(w, "  %-11s %s\n", "ecosystems:", strings.Join(v.Ecosystems, ", "))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		info := currentVersion()
		switch {
		case versionShort:
			fmt.Fprintln(w, info.Version)
		case versionJSON:
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(info); err != nil {
				return fmt.Errorf("encoding version info: %w", err)
			}
		default:
			info.print(w)
		}
		return nil
	},
}
