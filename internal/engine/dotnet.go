package engine

import (
	"context"

	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
)

// dotnetShortcuts map convenience switches to `dotnet new` templates.
var dotnetShortcuts = []struct {
	flag     string
	template string
}{
	{"--mvc", "mvc"},
	{"--blazor", "blazor"},
	{"--razor", "razor"},
	{"--console", "console"},
	{"--classlib", "classlib"},
	{"--worker", "worker"},
	{"--grpc", "grpc"},
}

// dotnetFrameworks map version switches to target framework monikers.
var dotnetFrameworks = []struct {
	flag      string
	framework string
}{
	{"--net6", "net6.0"},
	{"--net7", "net7.0"},
	{"--net8", "net8.0"},
	{"--net9", "net9.0"},
}

// dotnetPackages are NuGet packages added right after `dotnet new` when
// their switch is present. --ef and --entity-framework are synonyms.
var dotnetPackages = []struct {
	flags    []string
	packages []string
}{
	{[]string{"--ef", "--entity-framework"}, []string{"Microsoft.EntityFrameworkCore.SqlServer", "Microsoft.EntityFrameworkCore.Tools"}},
	{[]string{"--swagger"}, []string{"Swashbuckle.AspNetCore"}},
	{[]string{"--serilog"}, []string{"Serilog.AspNetCore"}},
	{[]string{"--automapper"}, []string{"AutoMapper.Extensions.Microsoft.DependencyInjection"}},
	{[]string{"--jwt"}, []string{"Microsoft.AspNetCore.Authentication.JwtBearer"}},
}

// DefaultDotNetTemplate is used when no template switch is given.
const DefaultDotNetTemplate = "webapi"

// DefaultDotNetAuth is the authentication type selected by a bare --auth.
const DefaultDotNetAuth = "Individual"

// DotNet generates projects with `dotnet new`.
type DotNet struct{ base }

// NewDotNet returns the .NET engine.
func NewDotNet(r runner.Runner, opts Options) *DotNet {
	return &DotNet{base{eco: template.DotNet, runner: r, opts: opts.withDefaults()}}
}

// Generate implements Engine.
func (d *DotNet) Generate(ctx context.Context, _ *template.Workspace, p plan.Plan) error {
	if err := d.mkdir(p.OutputPath); err != nil {
		return err
	}
	extra, err := d.splitArgs(p)
	if err != nil {
		return err
	}
	flags := parseFlags(extra, dotnetKnownFlags()...)

	tmpl := DefaultDotNetTemplate
	for _, s := range dotnetShortcuts {
		if flags.has(s.flag) {
			tmpl = s.template
			break
		}
	}
	tmpl = flags.get("--template", tmpl)

	framework := targetFramework(p.Version)
	for _, f := range dotnetFrameworks {
		if flags.has(f.flag) {
			framework = f.framework
			break
		}
	}
	framework = flags.get("--framework", framework)

	args := []string{"new", tmpl}
	if p.Name != "" {
		args = append(args, "-n", p.Name, "-o", p.ProjectDir())
	}
	if framework != "" {
		args = append(args, "-f", framework)
	}
	if flags.has("--auth") {
		args = append(args, "--auth", flags.get("--auth", DefaultDotNetAuth))
	}
	noRestore := flags.has("--no-restore")
	if noRestore {
		args = append(args, "--no-restore")
	}
	args = append(args, flags.rest...)

	if err := d.run(ctx, "dotnet new "+tmpl, toolCommand("dotnet", args...), p.OutputPath); err != nil {
		return err
	}

	for _, group := range dotnetPackages {
		if !flags.has(group.flags...) {
			continue
		}
		for _, pkg := range group.packages {
			if err := d.run(ctx, "dotnet add package "+pkg, dotnetAddPackage(pkg, "", noRestore), p.ProjectDir()); err != nil {
				return err
			}
		}
	}
	return nil
}

// dotnetKnownFlags lists every switch the engine consumes. --https is
// accepted and dropped since HTTPS is already the template default.
func dotnetKnownFlags() []string {
	known := []string{"--template", "--framework", "--auth", "--https", "--no-restore"}
	for _, s := range dotnetShortcuts {
		known = append(known, s.flag)
	}
	for _, f := range dotnetFrameworks {
		known = append(known, f.flag)
	}
	for _, g := range dotnetPackages {
		known = append(known, g.flags...)
	}
	return known
}

func dotnetAddPackage(pkg, version string, noRestore bool) runner.Command {
	args := []string{"add", "package", pkg}
	if version != "" {
		args = append(args, "--version", version)
	}
	if noRestore {
		args = append(args, "--no-restore")
	}
	return toolCommand("dotnet", args...)
}

// targetFramework turns an ecosystem version such as "8.0" into a target
// framework moniker.
func targetFramework(version string) string {
	if version == "" {
		return ""
	}
	if version[0] >= '0' && version[0] <= '9' {
		return "net" + version
	}
	return version
}

// InstallerFor implements Engine.
func (d *DotNet) InstallerFor(p plan.Plan, _ []template.Dependency) deps.Installer {
	return NewDotNetInstaller(d.runner, p.ProjectDir(), d.opts.CommandTimeout)
}
