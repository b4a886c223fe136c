package engine

import (
	"context"

	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/descriptor"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/scaffold"
	"github.com/agentx-labs/stackboot/internal/template"
)

// Versions written into generated Ktor builds unless overridden with
// --kotlin-version= and --ktor-version=.
const (
	DefaultKotlinVersion = "2.1.0"
	DefaultKtorVersion   = "3.0.3"
)

const defaultKotlinPackage = "com.example"

// Kotlin generates Kotlin projects in one of three modes: a plain Gradle
// application through `gradle init`, a Ktor service from the embedded
// skeleton (--ktor), or a Spring Boot project from Initializr (--spring).
type Kotlin struct{ base }

// NewKotlin returns the Kotlin engine.
func NewKotlin(r runner.Runner, opts Options) *Kotlin {
	return &Kotlin{base{eco: template.Kotlin, runner: r, opts: opts.withDefaults()}}
}

// Generate implements Engine.
func (k *Kotlin) Generate(ctx context.Context, _ *template.Workspace, p plan.Plan) error {
	extra, err := k.splitArgs(p)
	if err != nil {
		return err
	}
	known := append([]string{"--ktor", "--spring", "--kotlin-version", "--ktor-version"}, starterFlags...)
	flags := parseFlags(extra, known...)

	switch {
	case flags.has("--ktor"):
		return k.generateKtor(ctx, p, flags)
	case flags.has("--spring"):
		if err := k.mkdir(p.OutputPath); err != nil {
			return err
		}
		u := k.starterURL(p, flags, kotlinGradleStarter, DefaultBootVersion)
		return k.fetchStarter(ctx, u, p.OutputPath)
	}

	dir := p.ProjectDir()
	if err := k.mkdir(dir); err != nil {
		return err
	}
	args := []string{"init", "--type", "kotlin-application", "--dsl", "kotlin"}
	if p.Name != "" {
		args = append(args, "--project-name", p.Name)
	}
	if p.Package != "" {
		args = append(args, "--package", p.Package)
	}
	args = append(args, flags.rest...)
	return k.run(ctx, "gradle init", toolCommand("gradle", args...), dir)
}

func (k *Kotlin) generateKtor(ctx context.Context, p plan.Plan, flags flagSet) error {
	pkg := p.Package
	if pkg == "" {
		pkg = defaultKotlinPackage
	}
	versions := map[string]string{
		"kotlin": flags.get("--kotlin-version", DefaultKotlinVersion),
		"ktor":   flags.get("--ktor-version", DefaultKtorVersion),
	}
	data := scaffold.Data{Name: p.Name, Package: pkg, Versions: versions}
	res, err := scaffold.Render("kotlin-ktor", data, p.ProjectDir())
	if err != nil {
		return &GenerationError{Ecosystem: k.eco, Step: "write ktor skeleton", Cause: err}
	}
	ctxlog.FromContext(ctx).Info("wrote ktor skeleton", "dir", res.OutputDir, "files", len(res.Files))
	return nil
}

// InstallerFor implements Engine. Bare artifact names of well-known Kotlin
// libraries get their group filled in.
func (k *Kotlin) InstallerFor(p plan.Plan, _ []template.Dependency) deps.Installer {
	return &BuildFileInstaller{ProjectDir: p.ProjectDir(), InferGroup: descriptor.KotlinGroup}
}
