package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/agentx-labs/stackboot/internal/changeset"
	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/engine"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/template"
)

// Orchestrator drives a whole template run.
type Orchestrator struct {
	Registry *engine.Registry
	Probe    deps.Probe
	// Out receives human-readable progress. Nil discards it.
	Out      io.Writer
	Logger   *slog.Logger
	Now      func() time.Time
}

// Load fetches and parses a template. Any failure is returned as a
// classified *RunError.
func Load(ctx context.Context, source string, f template.Fetcher) (*template.Template, error) {
	tpl, err := template.Load(ctx, source, f)
	if err != nil {
		return nil, Classify(err, -1)
	}
	return tpl, nil
}

// Run processes every workspace in declaration order. The first fatal
// failure stops the run; workspaces already completed keep their output.
// The returned error, when non-nil, is the *RunError also stored in the
// report.
func (o *Orchestrator) Run(ctx context.Context, tpl *template.Template, ov plan.Overrides) (*Report, error) {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	out := o.Out
	if out == nil {
		out = io.Discard
	}
	log := o.Logger
	if log == nil {
		log = ctxlog.FromContext(ctx)
	}
	ctx = ctxlog.WithLogger(ctx, log)

	rep := &Report{Started: now(), Status: StatusSuccess}
	finish := func(err *RunError) (*Report, error) {
		rep.Elapsed = now().Sub(rep.Started)
		if err != nil {
			rep.Status = StatusAborted
			rep.Err = err
			log.Error("run aborted", "category", err.Category, "workspace", err.WorkspaceIndex, "error", err.Cause)
			return rep, err
		}
		log.Info("run complete", "workspaces", len(rep.Workspaces), "elapsed", rep.Elapsed)
		return rep, nil
	}

	if err := template.Validate(tpl); err != nil {
		return finish(Classify(err, -1))
	}
	if o.Registry == nil || o.Probe == nil {
		return finish(&RunError{Category: CategoryInternal, WorkspaceIndex: -1, Cause: errors.New("orchestrator needs a registry and a probe")})
	}

	for i := range tpl.Workspaces {
		rep.Workspaces = append(rep.Workspaces, WorkspaceReport{
			Index:     i,
			Ecosystem: tpl.Workspaces[i].General.Ecosystem,
			Status:    StatusPending,
		})
	}

	for i := range tpl.Workspaces {
		wr := &rep.Workspaces[i]
		if err := o.runWorkspace(ctx, out, i, &tpl.Workspaces[i], ov, wr); err != nil {
			wr.Status = StatusAborted
			return finish(err)
		}
		wr.Status = StatusSuccess
	}
	return finish(nil)
}

func (o *Orchestrator) runWorkspace(ctx context.Context, out io.Writer, idx int, ws *template.Workspace, ov plan.Overrides, wr *WorkspaceReport) *RunError {
	log := ctxlog.FromContext(ctx).With("workspace", idx, "ecosystem", ws.General.Ecosystem)
	ctx = ctxlog.WithLogger(ctx, log)

	p := plan.Resolve(ws, ov)
	wr.Target = p.ProjectDir()
	fmt.Fprintf(out, "Workspace %d: %s -> %s\n", idx, p.Ecosystem.Label(), wr.Target)
	log.Info("workspace started", "target", wr.Target, "name", p.Name, "package", p.Package)

	eng, err := o.Registry.Lookup(p.Ecosystem)
	if err != nil {
		return Classify(err, idx)
	}

	if pre := ws.DependenciesFor(template.PhasePre); len(pre) > 0 {
		fmt.Fprintln(out, " Checking dependencies:")
		wr.Checks = deps.Check(ctx, pre, o.Probe)
		for _, c := range wr.Checks {
			printCheck(out, c)
		}
		if n := len(wr.Checks); n > 0 && wr.Checks[n-1].Fatal {
			return Classify(&UnmetDependencyError{Result: wr.Checks[n-1]}, idx)
		}
	}

	fmt.Fprintf(out, " Generating %s project...\n", p.Ecosystem.Label())
	if err := eng.Generate(ctx, ws, p); err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return Classify(err, idx)
	}
	fmt.Fprintf(out, "  [ OK ] generated %s\n", wr.Target)

	if post := ws.DependenciesFor(template.PhasePost); len(post) > 0 {
		fmt.Fprintln(out, " Installing dependencies:")
		wr.Installs = deps.Install(ctx, post, eng.InstallerFor(p, post))
		for _, in := range wr.Installs {
			printInstall(out, in)
		}
	}

	wr.Changes = changeset.Apply(ws.Structure, wr.Target)
	if !wr.Changes.Skipped {
		fmt.Fprintln(out, " Applying structure:")
		printChanges(out, wr.Changes)
	}
	log.Info("workspace complete")
	return nil
}
