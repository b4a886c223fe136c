// Package plan merges a workspace's declared values with caller overrides
// into the concrete parameters used to generate that workspace.
package plan

import (
	"path/filepath"

	"github.com/agentx-labs/stackboot/internal/template"
)

// Overrides are caller-supplied values, typically from command-line flags.
type Overrides struct {
	Name       string
	Package    string
	Args       string
	OutputRoot string
	Debug      bool
}

// Plan is the resolved parameter set for one workspace. It is built fresh
// for every workspace and discarded once that workspace is done.
type Plan struct {
	Ecosystem  template.Ecosystem
	Name       string
	Package    string
	Version    string
	Args       string
	OutputPath string
	Debug      bool
}

// ProjectDir is where the engine places the generated project and where
// installers and changesets operate.
func (p Plan) ProjectDir() string {
	if p.Name == "" {
		return p.OutputPath
	}
	return filepath.Join(p.OutputPath, p.Name)
}

// Resolve applies the precedence rule: a value declared in the template wins
// (even when empty), then the override, then "". Ecosystem and version are
// taken from the template only.
func Resolve(ws *template.Workspace, o Overrides) Plan {
	root := o.OutputRoot
	if root == "" {
		root = "."
	}
	out := root
	if ws.Path != "" {
		out = filepath.Join(root, ws.Path)
	}

	p := Plan{
		Name:       o.Name,
		Package:    o.Package,
		Args:       o.Args,
		OutputPath: out,
		Debug:      o.Debug,
	}
	if g := ws.General; g != nil {
		p.Ecosystem = g.Ecosystem
		p.Version = g.Version()
		p.Name = pick(g.ProjectName, o.Name)
		p.Package = pick(g.ProjectPackage, o.Package)
		p.Args = pick(g.CLIArgs, o.Args)
	}
	return p
}

func pick(declared *string, override string) string {
	if declared != nil {
		return *declared
	}
	return override
}
