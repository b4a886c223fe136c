package template

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// HCL templates mirror the YAML shape with blocks:
//
//	workspace {
//	  path = "backend"
//	  general {
//	    ecosystem    = "quarkus"
//	    project_name = env.PROJECT
//	  }
//	  dependencies "pre" {
//	    dependency "java" { version = "17+" }
//	  }
//	  structure "custom" {
//	    changeset "add" {
//	      path "docs" { autocreate = true }
//	    }
//	  }
//	}
type hclFile struct {
	Workspaces []*hclWorkspace `hcl:"workspace,block"`
}

type hclWorkspace struct {
	Path         *string            `hcl:"path,optional"`
	General      *hclGeneral        `hcl:"general,block"`
	Dependencies []*hclDependencies `hcl:"dependencies,block"`
	Structure    *hclStructure      `hcl:"structure,block"`
}

type hclGeneral struct {
	Ecosystem        *string `hcl:"ecosystem,optional"`
	EcosystemVersion *string `hcl:"ecosystem_version,optional"`
	CLIArgs          *string `hcl:"cli_args,optional"`
	ProjectName      *string `hcl:"project_name,optional"`
	ProjectPackage   *string `hcl:"project_package,optional"`
}

type hclDependencies struct {
	Phase string           `hcl:"phase,label"`
	Items []*hclDependency `hcl:"dependency,block"`
}

type hclDependency struct {
	Name        string  `hcl:"name,label"`
	PackageName *string `hcl:"package_name,optional"`
	Version     *string `hcl:"version,optional"`
	Optional    *bool   `hcl:"optional,optional"`
	Extension   *bool   `hcl:"extension,optional"`
}

type hclStructure struct {
	Mode       string          `hcl:"mode,label"`
	ChangeSets []*hclChangeSet `hcl:"changeset,block"`
}

type hclChangeSet struct {
	Type  string     `hcl:"type,label"`
	Paths []*hclPath `hcl:"path,block"`
}

type hclPath struct {
	Name       string  `hcl:"name,label"`
	AutoCreate *bool   `hcl:"autocreate,optional"`
	Content    *string `hcl:"content,optional"`
}

func parseHCL(data []byte, name string) (*Template, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, &ParseError{Source: name, Cause: diags}
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &parsed); diags.HasErrors() {
		return nil, &ParseError{Source: name, Cause: diags}
	}

	t := &Template{Workspaces: make([]Workspace, 0, len(parsed.Workspaces))}
	for _, hw := range parsed.Workspaces {
		ws, err := hw.toWorkspace()
		if err != nil {
			return nil, &ParseError{Source: name, Cause: err}
		}
		t.Workspaces = append(t.Workspaces, ws)
	}
	return t, nil
}

// evalContext exposes the process environment to expressions as env.NAME.
func evalContext() *hcl.EvalContext {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || !hclIdentifier(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func hclIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

func (hw *hclWorkspace) toWorkspace() (Workspace, error) {
	ws := Workspace{Path: str(hw.Path)}

	if g := hw.General; g != nil {
		ws.General = &General{
			EcosystemVersion: g.EcosystemVersion,
			CLIArgs:          g.CLIArgs,
			ProjectName:      g.ProjectName,
			ProjectPackage:   g.ProjectPackage,
		}
		if strings.TrimSpace(str(g.Ecosystem)) != "" {
			eco, err := ParseEcosystem(*g.Ecosystem)
			if err != nil {
				return Workspace{}, err
			}
			ws.General.Ecosystem = eco
		}
	}

	for _, hd := range hw.Dependencies {
		block := DependencyBlock{Phase: hd.Phase}
		for _, item := range hd.Items {
			block.Items = append(block.Items, Dependency{
				Name:        item.Name,
				PackageName: str(item.PackageName),
				Version:     str(item.Version),
				Optional:    item.Optional != nil && *item.Optional,
				Extension:   item.Extension != nil && *item.Extension,
			})
		}
		ws.Dependencies = append(ws.Dependencies, block)
	}

	if s := hw.Structure; s != nil {
		ws.Structure = &Structure{Mode: s.Mode}
		for _, hc := range s.ChangeSets {
			cs := ChangeSet{Type: ChangeType(hc.Type)}
			for _, p := range hc.Paths {
				cs.Paths = append(cs.Paths, PathSpec{
					Name:       p.Name,
					AutoCreate: p.AutoCreate != nil && *p.AutoCreate,
					Content:    str(p.Content),
				})
			}
			ws.Structure.ChangeSets = append(ws.Structure.ChangeSets, cs)
		}
	}
	return ws, nil
}
