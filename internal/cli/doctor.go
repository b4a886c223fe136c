package cli

import (
	"fmt"
	"io"

	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/orchestrator"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
	"github.com/spf13/cobra"
)

var doctorTemplate string

func init() {
	doctorCmd.Flags().StringVarP(&doctorTemplate, "template", "t", "", "Check the pre dependencies of this template")
	rootCmd.AddCommand(doctorCmd)
}

// toolchain is probed when doctor runs without a template.
var toolchain = []template.Dependency{
	{Name: "java", Optional: true},
	{Name: "mvn", Optional: true},
	{Name: "gradle", Optional: true},
	{Name: "node", Optional: true},
	{Name: "npm", Optional: true},
	{Name: "dotnet", Optional: true},
}

// newProbe builds the probe used by doctor. Tests replace it.
var newProbe = func(cmd *cobra.Command) deps.Probe {
	return &deps.RunnerProbe{Runner: &runner.ExecRunner{}, Timeout: settings(cmd).ProbeTimeout}
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local toolchain",
	Long: `Probe the tools the engines rely on and report their versions. With
--template, check each workspace's pre dependencies exactly as create would,
without generating anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		probe := newProbe(cmd)

		if doctorTemplate == "" {
			fmt.Fprintln(w, "Toolchain check:")
			printChecks(w, deps.Check(cmd.Context(), toolchain, probe))
			return nil
		}

		tpl, err := orchestrator.Load(cmd.Context(), doctorTemplate, &template.SourceFetcher{Timeout: settings(cmd).FetchTimeout})
		if err != nil {
			reportError(w, err)
			return err
		}
		if err := template.Validate(tpl); err != nil {
			reportError(w, err)
			return orchestrator.Classify(err, -1)
		}

		var failed int
		for i := range tpl.Workspaces {
			ws := &tpl.Workspaces[i]
			fmt.Fprintf(w, "Workspace %d (%s):\n", i, ws.General.Ecosystem.Label())
			pre := ws.DependenciesFor(template.PhasePre)
			if len(pre) == 0 {
				fmt.Fprintln(w, "  [INFO] no pre dependencies declared")
				continue
			}
			results := deps.Check(cmd.Context(), pre, probe)
			printChecks(w, results)
			if n := len(results); results[n-1].Fatal {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d workspace(s) have unmet required dependencies", failed)
		}
		return nil
	},
}

func printChecks(w io.Writer, results []deps.CheckResult) {
	for _, r := range results {
		d := r.Dependency
		switch r.Status {
		case deps.CheckOK:
			fmt.Fprintf(w, "  [ OK ] %s %s\n", d.Name, r.Actual)
		case deps.CheckNotFound:
			fmt.Fprintf(w, "  [MISS] %s not found\n", d.Name)
		case deps.CheckExtractFailed:
			fmt.Fprintf(w, "  [WARN] %s: %s\n", d.Name, r.Detail)
		default:
			fmt.Fprintf(w, "  [FAIL] %s: %s\n", d.Name, r.Detail)
		}
	}
}
