package template

import "strings"

// Dependency phases.
const (
	PhasePre  = "pre"
	PhasePost = "post"
)

// StructureModeCustom enables changeset processing for a Structure.
const StructureModeCustom = "custom"

// ChangeType discriminates additive from destructive changesets.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeRemove ChangeType = "remove"
)

// Template is the root of a parsed template document.
type Template struct {
	Workspaces []Workspace `yaml:"workspaces" json:"workspaces"`
}

// Workspace is one generation unit bound to a single ecosystem.
type Workspace struct {
	Path         string            `yaml:"path,omitempty" json:"path,omitempty"`
	General      *General          `yaml:"general" json:"general"`
	Dependencies []DependencyBlock `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Structure    *Structure        `yaml:"structure,omitempty" json:"structure,omitempty"`
}

// General holds the ecosystem selection and project identity of a workspace.
// String attributes are pointers so a declared empty value can be told apart
// from an absent one.
type General struct {
	Ecosystem        Ecosystem `yaml:"ecosystem" json:"ecosystem"`
	EcosystemVersion *string   `yaml:"ecosystemVersion,omitempty" json:"ecosystemVersion,omitempty"`
	CLIArgs          *string   `yaml:"cliArgs,omitempty" json:"cliArgs,omitempty"`
	ProjectName      *string   `yaml:"projectName,omitempty" json:"projectName,omitempty"`
	ProjectPackage   *string   `yaml:"projectPackage,omitempty" json:"projectPackage,omitempty"`
}

// DependencyBlock groups dependencies under a phase name.
type DependencyBlock struct {
	Phase string       `yaml:"phase" json:"phase"`
	Items []Dependency `yaml:"items" json:"items"`
}

// Dependency is a toolchain prerequisite or a library to install.
type Dependency struct {
	Name        string `yaml:"name" json:"name"`
	PackageName string `yaml:"packageName,omitempty" json:"packageName,omitempty"`
	Version     string `yaml:"version,omitempty" json:"version,omitempty"`
	Optional    bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Extension   bool   `yaml:"extension,omitempty" json:"extension,omitempty"`
}

// Structure holds the changesets applied after generation.
type Structure struct {
	Mode       string      `yaml:"mode" json:"mode"`
	ChangeSets []ChangeSet `yaml:"changesets,omitempty" json:"changesets,omitempty"`
}

// ChangeSet is a typed batch of path edits.
type ChangeSet struct {
	Type  ChangeType `yaml:"type" json:"type"`
	Paths []PathSpec `yaml:"paths" json:"paths"`
}

// PathSpec names one path relative to the project directory.
type PathSpec struct {
	Name       string `yaml:"name" json:"name"`
	AutoCreate bool   `yaml:"autocreate,omitempty" json:"autocreate,omitempty"`
	Content    string `yaml:"content,omitempty" json:"content,omitempty"`
}

// DependenciesFor flattens every block with the given phase, preserving
// declaration order across blocks.
func (w *Workspace) DependenciesFor(phase string) []Dependency {
	var out []Dependency
	for _, block := range w.Dependencies {
		if block.Phase == phase {
			out = append(out, block.Items...)
		}
	}
	return out
}

// Package returns the install name: PackageName when set, otherwise Name.
func (d Dependency) Package() string {
	if d.PackageName != "" {
		return d.PackageName
	}
	return d.Name
}

// MinimumMode reports whether the constraint is a "+"-suffixed minimum version.
func (d Dependency) MinimumMode() bool {
	return strings.HasSuffix(d.Version, "+")
}

// Custom reports whether changesets should be applied.
func (s *Structure) Custom() bool {
	return s != nil && s.Mode == StructureModeCustom
}

// str dereferences an optional template string.
func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Version returns the declared ecosystem version or "".
func (g *General) Version() string { return str(g.EcosystemVersion) }
