package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/engine"
	"github.com/agentx-labs/stackboot/internal/template"
)

// Category groups fatal run errors for reporting.
type Category string

const (
	CategoryTemplate   Category = "template"
	CategoryFetch      Category = "fetch"
	CategoryValidation Category = "validation"
	CategoryDependency Category = "dependency"
	CategoryGeneration Category = "generation"
	CategoryInternal   Category = "internal"
)

// RunError is a fatal failure that ended the run.
type RunError struct {
	Category       Category
	// WorkspaceIndex is -1 when the failure is not tied to a workspace.
	WorkspaceIndex int
	Cause          error
	Hints          []string
}

func (e *RunError) Error() string {
	if e.WorkspaceIndex < 0 {
		return fmt.Sprintf("%s error: %v", e.Category, e.Cause)
	}
	return fmt.Sprintf("%s error in workspace %d: %v", e.Category, e.WorkspaceIndex, e.Cause)
}

func (e *RunError) Unwrap() error { return e.Cause }

// UnmetDependencyError reports a required "pre" dependency that is missing
// or at the wrong version.
type UnmetDependencyError struct {
	Result deps.CheckResult
}

func (e *UnmetDependencyError) Error() string {
	d := e.Result.Dependency
	if e.Result.Status == deps.CheckNotFound {
		return fmt.Sprintf("required dependency %s not found", d.Name)
	}
	return fmt.Sprintf("required dependency %s does not satisfy %s: %s", d.Name, d.Version, e.Result.Detail)
}

// Classify wraps err in a *RunError with a category and remediation hints.
// An existing *RunError is returned unchanged.
func Classify(err error, workspace int) *RunError {
	if err == nil {
		return nil
	}
	var re *RunError
	if errors.As(err, &re) {
		return re
	}

	var (
		fe  *template.FetchError
		pe  *template.ParseError
		ve  *template.ValidationError
		ue  *UnmetDependencyError
		ge  *engine.GenerationError
		nfe *engine.NotFoundError
	)
	switch {
	case errors.As(err, &fe):
		hints := []string{"Check that the template path or URL is correct"}
		if fe.StatusCode != 0 {
			hints = append(hints, fmt.Sprintf("The server answered %d; verify access to the URL", fe.StatusCode))
		}
		return &RunError{Category: CategoryFetch, WorkspaceIndex: -1, Cause: err, Hints: hints}
	case errors.As(err, &pe):
		return &RunError{Category: CategoryTemplate, WorkspaceIndex: -1, Cause: err, Hints: []string{
			"Run 'stackboot validate <template>' to see every problem with its location",
			"Supported ecosystems are listed by 'stackboot engines'",
		}}
	case errors.As(err, &ve):
		return &RunError{Category: CategoryValidation, WorkspaceIndex: ve.WorkspaceIndex, Cause: err, Hints: []string{
			"Run 'stackboot validate <template>' for schema details",
		}}
	case errors.As(err, &ue):
		return &RunError{Category: CategoryDependency, WorkspaceIndex: workspace, Cause: err, Hints: dependencyHints(ue.Result)}
	case errors.As(err, &ge):
		hints := []string{"Run with --debug to stream the tool output"}
		if tail := strings.TrimSpace(ge.Tail(5)); tail != "" {
			hints = append(hints, "Last output:\n"+tail)
		}
		return &RunError{Category: CategoryGeneration, WorkspaceIndex: workspace, Cause: err, Hints: hints}
	case errors.As(err, &nfe):
		return &RunError{Category: CategoryInternal, WorkspaceIndex: workspace, Cause: err, Hints: []string{
			"Run 'stackboot engines' to list the registered ecosystems",
		}}
	default:
		return &RunError{Category: CategoryInternal, WorkspaceIndex: workspace, Cause: err}
	}
}

func dependencyHints(r deps.CheckResult) []string {
	d := r.Dependency
	hints := []string{fmt.Sprintf("Install %s %s and make sure it is on PATH", d.Name, d.Version)}
	if r.Status == deps.CheckVersionMismatch && r.Actual != "" {
		hints = append(hints, fmt.Sprintf("Found version %s", r.Actual))
	}
	return append(hints, "Mark the dependency optional: true to continue without it")
}
