package cli

import (
	"fmt"
	"strings"

	"github.com/agentx-labs/stackboot/internal/template"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(enginesCmd)
}

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List supported ecosystems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-12s %-14s %s\n", "ID", "NAME", "ALIASES")
		for _, eco := range template.AllEcosystems() {
			fmt.Fprintf(w, "%-12s %-14s %s\n", eco, eco.Label(), strings.Join(eco.Aliases(), ", "))
		}
		return nil
	},
}
