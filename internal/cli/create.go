package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/agentx-labs/stackboot/internal/branding"
	"github.com/agentx-labs/stackboot/internal/config"
	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/engine"
	"github.com/agentx-labs/stackboot/internal/orchestrator"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
	"github.com/spf13/cobra"
)

var (
	createTemplate    string
	createName        string
	createPackage     string
	createArgs        string
	createOutput      string
	createInteractive bool
)

func init() {
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "", "Template file path or http(s) URL (required)")
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "Project name for workspaces that do not declare one")
	createCmd.Flags().StringVarP(&createPackage, "package", "p", "", "Base package for workspaces that do not declare one")
	createCmd.Flags().StringVarP(&createArgs, "cli-args", "c", "", "Extra ecosystem arguments for workspaces that do not declare any")
	createCmd.Flags().StringVarP(&createOutput, "output", "o", "", "Output root directory (default from config, else .)")
	createCmd.Flags().BoolVarP(&createInteractive, "interactive", "i", false, "Prompt for a missing project name or package")
	_ = createCmd.MarkFlagRequired("template")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate projects from a template",
	Long: `Generate every workspace declared in a template.

Values declared in the template always win over the flags below; flags only
fill in what a workspace leaves out.

Examples:
  ` + branding.CLIName() + ` create -t fullstack.yaml -n shop -p com.example.shop
  ` + branding.CLIName() + ` create -t https://example.com/templates/api.hcl -o ./out --debug`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

// newOrchestrator wires the real runner, probe and engines. Tests replace it.
var newOrchestrator = func(s config.Settings, out io.Writer, logger *slog.Logger) *orchestrator.Orchestrator {
	r := &runner.ExecRunner{}
	if s.Debug {
		r.Debug = out
	}
	reg := engine.NewDefaultRegistry(r, engine.Options{
		CommandTimeout: s.CommandTimeout,
		InitializrURL:  s.InitializrURL,
		HTTPClient:     http.DefaultClient,
		FetchTimeout:   s.FetchTimeout,
	})
	return &orchestrator.Orchestrator{
		Registry: reg,
		Probe:    &deps.RunnerProbe{Runner: r, Timeout: s.ProbeTimeout},
		Out:      out,
		Logger:   logger,
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	s := settings(cmd)

	tpl, err := orchestrator.Load(ctx, createTemplate, &template.SourceFetcher{Timeout: s.FetchTimeout})
	if err != nil {
		reportError(out, err)
		return err
	}

	ov := plan.Overrides{
		Name:       createName,
		Package:    createPackage,
		Args:       createArgs,
		OutputRoot: createOutput,
		Debug:      s.Debug,
	}
	if ov.OutputRoot == "" {
		ov.OutputRoot = s.Output
	}
	if abs, err := filepath.Abs(ov.OutputRoot); err == nil {
		ov.OutputRoot = abs
	}
	if createInteractive {
		if err := promptOverrides(tpl, &ov); err != nil {
			return fmt.Errorf("interactive prompt: %w", err)
		}
	}

	fmt.Fprintf(out, "Generating %d workspace(s) from %s\n\n", len(tpl.Workspaces), createTemplate)
	orch := newOrchestrator(s, out, ctxlog.FromContext(ctx))
	rep, err := orch.Run(ctx, tpl, ov)
	rep.Print(out)
	return err
}

func reportError(w io.Writer, err error) {
	orchestrator.PrintError(w, orchestrator.Classify(err, -1))
}
