package deps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
	"github.com/kballard/go-shellquote"
)

// DefaultProbeTimeout bounds a single `--version` probe.
const DefaultProbeTimeout = 30 * time.Second

// ProbeOutput is the raw outcome of running a tool's version command.
type ProbeOutput struct {
	ExitCode int
	Output   string
}

// Probe asks the system whether a tool is available.
type Probe interface {
	Probe(ctx context.Context, name string) (ProbeOutput, error)
}

// RunnerProbe runs `<name> --version` through a login shell.
type RunnerProbe struct {
	Runner  runner.Runner
	Timeout time.Duration
}

// Probe implements Probe. A timeout is reported as an error.
func (p *RunnerProbe) Probe(ctx context.Context, name string) (ProbeOutput, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	cmd := runner.ShellCommand(shellquote.Join(name, "--version"))
	res, err := p.Runner.Execute(ctx, cmd, "", timeout)
	if err != nil {
		return ProbeOutput{ExitCode: -1}, err
	}
	if res.TimedOut {
		return ProbeOutput{ExitCode: -1, Output: res.Output}, fmt.Errorf("%s --version timed out after %s", name, timeout)
	}
	return ProbeOutput{ExitCode: res.ExitCode, Output: res.Output}, nil
}

// CheckStatus classifies a checked dependency.
type CheckStatus string

const (
	CheckOK              CheckStatus = "ok"
	CheckNotFound        CheckStatus = "not-found"
	CheckVersionMismatch CheckStatus = "version-mismatch"
	CheckExtractFailed   CheckStatus = "extract-failed"
)

// CheckResult is the verdict for one dependency. Fatal is set only for a
// required dependency that is missing or at the wrong version.
type CheckResult struct {
	Dependency template.Dependency
	Status     CheckStatus
	Actual     string
	Detail     string
	Fatal      bool
}

// Failed reports any outcome other than ok.
func (r CheckResult) Failed() bool { return r.Status != CheckOK }

// Check verifies deps in order and stops after the first fatal result,
// which is the last element of the returned slice.
func Check(ctx context.Context, deps []template.Dependency, probe Probe) []CheckResult {
	log := ctxlog.FromContext(ctx)
	results := make([]CheckResult, 0, len(deps))

	for _, dep := range deps {
		res := checkOne(ctx, dep, probe)
		log.Debug("dependency checked",
			"name", dep.Name, "constraint", dep.Version, "status", res.Status,
			"actual", res.Actual, "optional", dep.Optional)
		results = append(results, res)
		if res.Fatal {
			break
		}
	}
	return results
}

func checkOne(ctx context.Context, dep template.Dependency, probe Probe) CheckResult {
	res := CheckResult{Dependency: dep}

	out, err := probe.Probe(ctx, dep.Name)
	if err != nil || out.ExitCode != 0 {
		res.Status = CheckNotFound
		res.Fatal = !dep.Optional
		if err != nil {
			res.Detail = err.Error()
		} else {
			res.Detail = fmt.Sprintf("%s --version exited with status %d", dep.Name, out.ExitCode)
		}
		return res
	}

	res.Actual = ExtractVersion(dep.Name, out.Output)
	ok, err := Satisfies(dep.Version, res.Actual, out.Output)
	switch {
	case errors.Is(err, ErrVersionExtract):
		res.Status = CheckExtractFailed
		res.Detail = err.Error()
	case err != nil:
		res.Status = CheckVersionMismatch
		res.Detail = err.Error()
		res.Fatal = !dep.Optional
	case !ok:
		res.Status = CheckVersionMismatch
		res.Detail = fmt.Sprintf("requires %s, found %s", dep.Version, describe(res.Actual))
		res.Fatal = !dep.Optional
	default:
		res.Status = CheckOK
	}
	return res
}

func describe(actual string) string {
	if actual == "" {
		return "unknown version"
	}
	return actual
}
