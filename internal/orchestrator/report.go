package orchestrator

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agentx-labs/stackboot/internal/changeset"
	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/template"
)

// Status is the outcome of a run or of one workspace.
type Status string

const (
	StatusSuccess Status = "success"
	StatusAborted Status = "aborted"
	// StatusPending marks workspaces never reached because an earlier one
	// aborted the run.
	StatusPending Status = "pending"
)

// WorkspaceReport records what happened to one workspace.
type WorkspaceReport struct {
	Index     int
	Ecosystem template.Ecosystem
	Target    string
	Checks    []deps.CheckResult
	Installs  []deps.InstallResult
	Changes   *changeset.Result
	Status    Status
}

// Report is returned for every run, successful or not.
type Report struct {
	Started    time.Time
	Elapsed    time.Duration
	Status     Status
	Workspaces []WorkspaceReport
	Err        *RunError
}

// Warnings counts the non-fatal problems recorded across all workspaces.
func (r *Report) Warnings() int {
	n := 0
	for _, ws := range r.Workspaces {
		for _, c := range ws.Checks {
			if c.Failed() && !c.Fatal {
				n++
			}
		}
		for _, in := range ws.Installs {
			if in.Status == deps.InstallFailed || in.Status == deps.InstallSkipped {
				n++
			}
		}
		if ws.Changes != nil {
			n += ws.Changes.Failed()
		}
	}
	return n
}

// Print writes the end-of-run summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	for _, ws := range r.Workspaces {
		tag := "[ OK ]"
		switch ws.Status {
		case StatusAborted:
			tag = "[FAIL]"
		case StatusPending:
			tag = "[SKIP]"
		}
		fmt.Fprintf(w, "  %s workspace %d (%s) %s\n", tag, ws.Index, ws.Ecosystem.Label(), ws.Target)
	}
	fmt.Fprintf(w, "\n%s in %s", r.Status, r.Elapsed.Round(time.Millisecond))
	if n := r.Warnings(); n > 0 {
		fmt.Fprintf(w, ", %d warning(s)", n)
	}
	fmt.Fprintln(w)

	if r.Err != nil {
		PrintError(w, r.Err)
	}
}

// PrintError writes a categorized error with its cause chain and hints.
func PrintError(w io.Writer, e *RunError) {
	fmt.Fprintf(w, "\nError (%s): %v\n", e.Category, e.Cause)
	for _, h := range e.Hints {
		lines := strings.Split(h, "\n")
		fmt.Fprintf(w, "  - %s\n", lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "      %s\n", l)
		}
	}
}

func printCheck(w io.Writer, c deps.CheckResult) {
	d := c.Dependency
	want := d.Version
	if want == "" {
		want = "any"
	}
	switch c.Status {
	case deps.CheckOK:
		fmt.Fprintf(w, "  [ OK ] %s %s (requires %s)\n", d.Name, c.Actual, want)
	case deps.CheckNotFound:
		fmt.Fprintf(w, "  [MISS] %s not found%s\n", d.Name, optionalSuffix(d))
	case deps.CheckExtractFailed:
		fmt.Fprintf(w, "  [WARN] %s: %s\n", d.Name, c.Detail)
	default:
		fmt.Fprintf(w, "  [FAIL] %s %s does not satisfy %s%s\n", d.Name, c.Actual, want, optionalSuffix(d))
	}
}

func optionalSuffix(d template.Dependency) string {
	if d.Optional {
		return " (optional)"
	}
	return ""
}

func printInstall(w io.Writer, in deps.InstallResult) {
	name := in.Dependency.Package()
	switch in.Status {
	case deps.InstallInstalled:
		fmt.Fprintf(w, "  [ OK ] installed %s\n", name)
	case deps.InstallAlreadyPresent:
		fmt.Fprintf(w, "  [ OK ] %s already present\n", name)
	case deps.InstallSkipped:
		fmt.Fprintf(w, "  [SKIP] %s: %s\n", name, in.Detail)
	default:
		fmt.Fprintf(w, "  [WARN] %s: %s\n", name, in.Detail)
	}
	for _, h := range in.Hints {
		fmt.Fprintf(w, "         %s\n", h)
	}
}

func printChanges(w io.Writer, res *changeset.Result) {
	for _, e := range res.Entries {
		switch e.Status {
		case changeset.StatusFailed, changeset.StatusRejected:
			fmt.Fprintf(w, "  [WARN] %s %s: %v\n", e.Op, e.Path, e.Err)
		case changeset.StatusAbsent:
			fmt.Fprintf(w, "  [SKIP] %s %s: not present\n", e.Op, e.Path)
		default:
			fmt.Fprintf(w, "  [ OK ] %s %s\n", e.Status, e.Path)
		}
	}
}
