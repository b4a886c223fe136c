package cli

import (
	"errors"
	"fmt"

	"github.com/agentx-labs/stackboot/internal/template"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <template>",
	Short: "Check a template without generating anything",
	Long: `Validate a template file or URL. YAML templates are checked against the
template schema, reporting every issue with its location; all formats are then
decoded and checked for the rules that apply before generation.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	source := args[0]
	w := cmd.OutOrStdout()
	s := settings(cmd)
	fmt.Fprintf(w, "Template validation: %s\n", source)

	data, err := (&template.SourceFetcher{Timeout: s.FetchTimeout}).Fetch(cmd.Context(), source)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return err
	}

	format := template.DetectFormat(source)
	if format == template.FormatYAML {
		res, err := template.ValidateDocument(data)
		if err != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", err)
			return fmt.Errorf("template %s: %w", source, err)
		}
		if !res.Valid {
			fmt.Fprintf(w, "  [FAIL] %d schema issue(s):\n", len(res.Issues))
			for _, issue := range res.Issues {
				if issue.Path != "" {
					fmt.Fprintf(w, "    - %s: %s\n", issue.Path, issue.Message)
				} else {
					fmt.Fprintf(w, "    - %s\n", issue.Message)
				}
			}
			return fmt.Errorf("template %s has %d schema issue(s)", source, len(res.Issues))
		}
		fmt.Fprintln(w, "  [ OK ] schema")
	}

	tpl, err := template.Parse(data, format, source)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return err
	}
	if err := template.Validate(tpl); err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		var ve *template.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return err
	}

	for i, ws := range tpl.Workspaces {
		target := ws.Path
		if target == "" {
			target = "."
		}
		fmt.Fprintf(w, "  [ OK ] workspace %d: %s in %s (%d pre, %d post)\n", i, ws.General.Ecosystem.Label(), target,
			len(ws.DependenciesFor(template.PhasePre)), len(ws.DependenciesFor(template.PhasePost)))
	}
	return nil
}
