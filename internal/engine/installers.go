package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/descriptor"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
)

// commandInstaller runs one package-manager command per dependency.
type commandInstaller struct {
	runner  runner.Runner
	dir     string
	timeout time.Duration
	build   func(dep template.Dependency) runner.Command
}

func (c *commandInstaller) Install(ctx context.Context, dep template.Dependency) deps.InstallResult {
	return runInstall(ctx, c.runner, c.build(dep), c.dir, c.timeout, dep)
}

func runInstall(ctx context.Context, r runner.Runner, cmd runner.Command, dir string, timeout time.Duration, dep template.Dependency) deps.InstallResult {
	res, err := r.Execute(ctx, cmd, dir, timeout)
	switch {
	case err != nil:
		return deps.InstallResult{Dependency: dep, Status: deps.InstallFailed, Detail: err.Error()}
	case res.TimedOut:
		return deps.InstallResult{Dependency: dep, Status: deps.InstallFailed, Detail: fmt.Sprintf("%s timed out", cmd.String())}
	case res.ExitCode != 0:
		return deps.InstallResult{
			Dependency: dep,
			Status:     deps.InstallFailed,
			Detail:     fmt.Sprintf("%s exited with status %d", cmd.String(), res.ExitCode),
			Hints:      []string{"Run the command by hand in " + dir + " to see the full output"},
		}
	}
	return deps.InstallResult{Dependency: dep, Status: deps.InstallInstalled, Detail: cmd.String()}
}

// NewNpmInstaller installs packages with `npm install`. Extension
// dependencies are saved as devDependencies.
func NewNpmInstaller(r runner.Runner, dir string, timeout time.Duration) deps.Installer {
	return &commandInstaller{runner: r, dir: dir, timeout: timeout, build: func(dep template.Dependency) runner.Command {
		save := "--save"
		if dep.Extension {
			save = "--save-dev"
		}
		pkg := dep.Package()
		if dep.Version != "" {
			pkg += "@" + dep.Version
		}
		return toolCommand("npm", "install", save, pkg)
	}}
}

// NewDotNetInstaller installs NuGet packages with `dotnet add package`.
func NewDotNetInstaller(r runner.Runner, dir string, timeout time.Duration) deps.Installer {
	return &commandInstaller{runner: r, dir: dir, timeout: timeout, build: func(dep template.Dependency) runner.Command {
		return dotnetAddPackage(dep.Package(), dep.Version, false)
	}}
}

// MavenInstaller adds libraries by patching pom.xml. With QuarkusExtensions
// set, extension dependencies go through `mvn quarkus:add-extension`
// instead; otherwise they are patched in with test scope.
type MavenInstaller struct {
	Runner            runner.Runner
	ProjectDir        string
	Timeout           time.Duration
	QuarkusExtensions bool
	Patcher           descriptor.Patcher
}

// Install implements deps.Installer.
func (m *MavenInstaller) Install(ctx context.Context, dep template.Dependency) deps.InstallResult {
	if dep.Extension && m.QuarkusExtensions {
		cmd := toolCommand("mvn", "-B", "quarkus:add-extension", "-Dextensions="+dep.Name)
		return runInstall(ctx, m.Runner, cmd, m.ProjectDir, m.Timeout, dep)
	}
	patcher := m.Patcher
	if patcher == nil {
		patcher = &descriptor.MavenPatcher{}
	}
	return patchInstall(filepath.Join(m.ProjectDir, "pom.xml"), patcher, dep)
}

// BuildFileInstaller patches whichever build descriptor the project has:
// build.gradle.kts, build.gradle or pom.xml, checked in that order. When the
// root has none of them, the subprojects included from settings.gradle(.kts)
// are searched in declaration order.
type BuildFileInstaller struct {
	ProjectDir string
	// InferGroup completes bare artifact names such as "ktor-server-core".
	InferGroup func(artifact string) string
}

// Install implements deps.Installer.
func (b *BuildFileInstaller) Install(_ context.Context, dep template.Dependency) deps.InstallResult {
	path, patcher := b.descriptor()
	return patchInstall(path, patcher, dep)
}

func (b *BuildFileInstaller) descriptor() (string, descriptor.Patcher) {
	dirs := append([]string{b.ProjectDir}, includedProjects(b.ProjectDir)...)
	for _, dir := range dirs {
		if path, patcher := b.descriptorIn(dir); patcher != nil {
			return path, patcher
		}
	}
	return filepath.Join(b.ProjectDir, "build.gradle.kts"), &descriptor.GradlePatcher{KotlinDSL: true, InferGroup: b.InferGroup}
}

func (b *BuildFileInstaller) descriptorIn(dir string) (string, descriptor.Patcher) {
	candidates := []struct {
		name    string
		patcher descriptor.Patcher
	}{
		{"build.gradle.kts", &descriptor.GradlePatcher{KotlinDSL: true, InferGroup: b.InferGroup}},
		{"build.gradle", &descriptor.GradlePatcher{InferGroup: b.InferGroup}},
		{"pom.xml", &descriptor.MavenPatcher{}},
	}
	for _, c := range candidates {
		path := filepath.Join(dir, c.name)
		if _, err := os.Stat(path); err == nil {
			return path, c.patcher
		}
	}
	return "", nil
}

var (
	gradleIncludeRe = regexp.MustCompile(`(?m)^\s*include\b\s*\(?([^)\n]*)`)
	gradleQuotedRe  = regexp.MustCompile(`["']:?([^"']+)["']`)
)

// includedProjects lists the subproject directories named by include(...)
// statements in the settings script of dir. Nested paths such as ":libs:core"
// map to libs/core.
func includedProjects(dir string) []string {
	var data []byte
	for _, name := range []string{"settings.gradle.kts", "settings.gradle"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			data = b
			break
		}
	}
	var out []string
	for _, m := range gradleIncludeRe.FindAllStringSubmatch(string(data), -1) {
		for _, q := range gradleQuotedRe.FindAllStringSubmatch(m[1], -1) {
			rel := filepath.FromSlash(strings.ReplaceAll(q[1], ":", "/"))
			if filepath.IsLocal(rel) {
				out = append(out, filepath.Join(dir, rel))
			}
		}
	}
	return out
}

func patchInstall(path string, patcher descriptor.Patcher, dep template.Dependency) deps.InstallResult {
	p, err := descriptor.PatchFile(path, patcher, dep)

	var notes, hints []string
	if p != nil {
		switch p.Processor {
		case descriptor.ProcessorAppended, descriptor.ProcessorCreated:
			notes = append(notes, "annotation processor registered")
		case descriptor.ProcessorNoPlugin:
			notes = append(notes, "no compiler plugin to register the annotation processor with")
		}
		if p.PluginAdded {
			notes = append(notes, "kapt plugin applied")
		}
		hints = p.Hints
	}

	var pe *descriptor.PatchError
	switch {
	case err == nil:
		return deps.InstallResult{Dependency: dep, Status: deps.InstallInstalled, Detail: join("added to "+filepath.Base(path), notes), Hints: hints}
	case errors.As(err, &pe) && pe.Kind == descriptor.KindAlreadyPresent:
		return deps.InstallResult{Dependency: dep, Status: deps.InstallAlreadyPresent, Detail: join(err.Error(), notes), Hints: hints}
	case errors.As(err, &pe):
		return deps.InstallResult{Dependency: dep, Status: deps.InstallFailed, Detail: join(err.Error(), notes), Hints: append(hints, pe.Hints...)}
	default:
		return deps.InstallResult{
			Dependency: dep,
			Status:     deps.InstallFailed,
			Detail:     err.Error(),
			Hints:      []string{"Make sure the project directory is writable", "Run with --debug for verbose output"},
		}
	}
}

func join(head string, notes []string) string {
	if len(notes) == 0 {
		return head
	}
	return head + "; " + strings.Join(notes, "; ")
}
