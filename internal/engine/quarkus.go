package engine

import (
	"context"

	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
)

// Quarkus generates projects with the quarkus-maven-plugin create goal.
type Quarkus struct{ base }

// NewQuarkus returns the Quarkus engine.
func NewQuarkus(r runner.Runner, opts Options) *Quarkus {
	return &Quarkus{base{eco: template.Quarkus, runner: r, opts: opts.withDefaults()}}
}

// Generate implements Engine.
func (q *Quarkus) Generate(ctx context.Context, _ *template.Workspace, p plan.Plan) error {
	if err := q.mkdir(p.OutputPath); err != nil {
		return err
	}
	extra, err := q.splitArgs(p)
	if err != nil {
		return err
	}

	goal := "io.quarkus.platform:quarkus-maven-plugin:create"
	if p.Version != "" {
		goal = "io.quarkus.platform:quarkus-maven-plugin:" + p.Version + ":create"
	}
	args := []string{"-B", goal}
	if p.Package != "" {
		args = append(args, "-DprojectGroupId="+p.Package)
	}
	if p.Name != "" {
		args = append(args, "-DprojectArtifactId="+p.Name)
	}
	args = append(args, extra...)

	return q.run(ctx, "mvn quarkus:create", toolCommand("mvn", args...), p.OutputPath)
}

// InstallerFor implements Engine.
func (q *Quarkus) InstallerFor(p plan.Plan, _ []template.Dependency) deps.Installer {
	return &MavenInstaller{Runner: q.runner, ProjectDir: p.ProjectDir(), Timeout: q.opts.CommandTimeout, QuarkusExtensions: true}
}
