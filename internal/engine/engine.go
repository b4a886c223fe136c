package engine

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
	"github.com/kballard/go-shellquote"
)

// Engine scaffolds projects for one ecosystem.
type Engine interface {
	Ecosystem() template.Ecosystem
	// Generate creates the project for ws under p.OutputPath.
	Generate(ctx context.Context, ws *template.Workspace, p plan.Plan) error
	// InstallerFor returns the installer for the workspace's post
	// dependencies.
	InstallerFor(p plan.Plan, deps []template.Dependency) deps.Installer
}

// Options configure the default engines.
type Options struct {
	// CommandTimeout bounds each external tool invocation.
	CommandTimeout time.Duration
	// InitializrURL is the Spring Initializr base URL.
	InitializrURL string
	HTTPClient    *http.Client
	// FetchTimeout bounds the Spring Initializr download.
	FetchTimeout time.Duration
}

// DefaultInitializrURL is the public Spring Initializr.
const DefaultInitializrURL = "https://start.spring.io"

func (o Options) withDefaults() Options {
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = runner.DefaultTimeout
	}
	if o.InitializrURL == "" {
		o.InitializrURL = DefaultInitializrURL
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 60 * time.Second
	}
	return o
}

// GenerationError reports a failed scaffolding step.
type GenerationError struct {
	Ecosystem template.Ecosystem
	Step      string
	ExitCode  int
	Output    string
	Cause     error
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("%s generation failed: %s", e.Ecosystem, e.Step)
	switch {
	case e.Cause != nil:
		msg += ": " + e.Cause.Error()
	case e.ExitCode != 0:
		msg += fmt.Sprintf(" exited with status %d", e.ExitCode)
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Tail returns the last n lines of the captured output.
func (e *GenerationError) Tail(n int) string {
	lines := strings.Split(strings.TrimRight(e.Output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// toolCommand runs name with args through the login shell so that tools
// installed by version managers are found.
func toolCommand(name string, args ...string) runner.Command {
	return runner.ShellCommand(shellquote.Join(append([]string{name}, args...)...))
}

// base carries what every engine needs to run tools.
type base struct {
	eco    template.Ecosystem
	runner runner.Runner
	opts   Options
}

func (b *base) Ecosystem() template.Ecosystem { return b.eco }

// run executes cmd in dir and converts a failure into a *GenerationError.
func (b *base) run(ctx context.Context, step string, cmd runner.Command, dir string) error {
	ctxlog.FromContext(ctx).Info("running", "ecosystem", b.eco, "step", step, "cmd", cmd.String(), "dir", dir)
	res, err := b.runner.Execute(ctx, cmd, dir, b.opts.CommandTimeout)
	if err != nil {
		return &GenerationError{Ecosystem: b.eco, Step: step, ExitCode: -1, Cause: err}
	}
	if res.TimedOut {
		return &GenerationError{Ecosystem: b.eco, Step: step, ExitCode: -1, Output: res.Output,
			Cause: fmt.Errorf("timed out after %s", b.opts.CommandTimeout)}
	}
	if res.ExitCode != 0 {
		return &GenerationError{Ecosystem: b.eco, Step: step, ExitCode: res.ExitCode, Output: res.Output}
	}
	return nil
}

func (b *base) mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &GenerationError{Ecosystem: b.eco, Step: "create output directory", Cause: err}
	}
	return nil
}

// splitArgs parses the free-form args of p, reporting bad quoting as a
// generation failure.
func (b *base) splitArgs(p plan.Plan) ([]string, error) {
	args, err := runner.SplitArgs(p.Args)
	if err != nil {
		return nil, &GenerationError{Ecosystem: b.eco, Step: "parse arguments", Cause: err}
	}
	return args, nil
}

// flagSet tracks engine-specific switches found in free-form args. Consumed
// switches are removed from the remaining argument list.
type flagSet struct {
	rest   []string
	values map[string]string
}

func parseFlags(args []string, known ...string) flagSet {
	fs := flagSet{values: map[string]string{}}
	isKnown := make(map[string]bool, len(known))
	for _, k := range known {
		isKnown[k] = true
	}
	for _, a := range args {
		name, value, hasValue := strings.Cut(a, "=")
		if isKnown[name] {
			if !hasValue {
				value = "true"
			}
			fs.values[name] = value
			continue
		}
		fs.rest = append(fs.rest, a)
	}
	return fs
}

func (f flagSet) has(names ...string) bool {
	for _, n := range names {
		if _, ok := f.values[n]; ok {
			return true
		}
	}
	return false
}

func (f flagSet) get(name, fallback string) string {
	if v, ok := f.values[name]; ok && v != "" && v != "true" {
		return v
	}
	return fallback
}
