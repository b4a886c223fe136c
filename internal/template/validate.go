package template

import (
	"fmt"
	"strings"
)

// Validate checks the semantic rules a decoded template must satisfy before
// any workspace is processed. It returns nil or a *ValidationError.
func Validate(t *Template) error {
	if t == nil || len(t.Workspaces) == 0 {
		return &ValidationError{Reason: "template declares no workspaces", WorkspaceIndex: -1}
	}
	for i := range t.Workspaces {
		if reason := validateWorkspace(&t.Workspaces[i]); reason != "" {
			return &ValidationError{Reason: reason, WorkspaceIndex: i}
		}
	}
	return nil
}

func validateWorkspace(ws *Workspace) string {
	if ws.General == nil {
		return "missing general block"
	}
	if ws.General.Ecosystem == "" {
		return "missing ecosystem identifier"
	}
	if _, ok := ecosystems[ws.General.Ecosystem]; !ok {
		return fmt.Sprintf("unknown ecosystem %q", ws.General.Ecosystem)
	}

	for _, block := range ws.Dependencies {
		if block.Phase != PhasePre && block.Phase != PhasePost {
			return fmt.Sprintf("unknown dependency phase %q", block.Phase)
		}
		for _, dep := range block.Items {
			if strings.TrimSpace(dep.Name) == "" {
				return fmt.Sprintf("%s dependency without a name", block.Phase)
			}
			if block.Phase == PhasePre && strings.TrimSpace(dep.Version) == "" {
				return fmt.Sprintf("dependency %q: pre dependencies need a version constraint", dep.Name)
			}
			if reason := checkConstraint(dep.Version); reason != "" {
				return fmt.Sprintf("dependency %q: %s", dep.Name, reason)
			}
		}
	}

	if ws.Structure != nil {
		for _, cs := range ws.Structure.ChangeSets {
			if cs.Type != ChangeAdd && cs.Type != ChangeRemove {
				return fmt.Sprintf("unknown changeset type %q", cs.Type)
			}
			for _, p := range cs.Paths {
				if strings.TrimSpace(p.Name) == "" {
					return fmt.Sprintf("%s changeset with an empty path", cs.Type)
				}
			}
		}
	}
	return ""
}

// checkConstraint accepts "", an exact token, or a token suffixed "+" whose
// prefix starts with a number.
func checkConstraint(v string) string {
	if v == "" {
		return ""
	}
	if strings.ContainsAny(v, " \t\n") {
		return fmt.Sprintf("version constraint %q contains whitespace", v)
	}
	if !strings.HasSuffix(v, "+") {
		return ""
	}
	prefix := strings.TrimSuffix(v, "+")
	if prefix == "" || prefix[0] < '0' || prefix[0] > '9' {
		return fmt.Sprintf("minimum version %q must start with a number", v)
	}
	return ""
}
