package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/agentx-labs/stackboot/internal/config"
	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/engine"
	"github.com/agentx-labs/stackboot/internal/orchestrator"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/template"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// execute runs the root command with a clean HOME and fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeEngine struct {
	eco       template.Ecosystem
	generated int
}

func (f *fakeEngine) Ecosystem() template.Ecosystem { return f.eco }

func (f *fakeEngine) Generate(_ context.Context, _ *template.Workspace, p plan.Plan) error {
	f.generated++
	return os.MkdirAll(p.ProjectDir(), 0o755)
}

func (f *fakeEngine) InstallerFor(plan.Plan, []template.Dependency) deps.Installer { return nil }

type fakeProbe map[string]string

func (f fakeProbe) Probe(_ context.Context, name string) (deps.ProbeOutput, error) {
	out, ok := f[name]
	if !ok {
		return deps.ProbeOutput{}, errors.New("not found")
	}
	return deps.ProbeOutput{Output: out}, nil
}

// useFakes swaps the real toolchain for a fake engine and probe.
func useFakes(t *testing.T, eng *fakeEngine, probe fakeProbe) {
	t.Helper()
	origOrch, origProbe := newOrchestrator, newProbe
	t.Cleanup(func() { newOrchestrator, newProbe = origOrch, origProbe })

	newOrchestrator = func(_ config.Settings, out io.Writer, logger *slog.Logger) *orchestrator.Orchestrator {
		reg := engine.NewRegistry()
		if err := reg.Register(eng); err != nil {
			t.Fatal(err)
		}
		return &orchestrator.Orchestrator{Registry: reg, Probe: probe, Out: out, Logger: logger}
	}
	newProbe = func(*cobra.Command) deps.Probe { return probe }
}

const nodeTemplate = `workspaces:
  - general:
      ecosystem: express
      projectName: api
    dependencies:
      - phase: pre
        items:
          - name: node
            version: "18+"
    structure:
      mode: custom
      changesets:
        - type: add
          paths:
            - name: docs
              autocreate: true
            - name: docs/README.md
              content: hello
`

func TestVersionCommand(t *testing.T) {
	buildVersion, buildCommit, buildDate = "1.4.0", "abc123", "2026-01-02"

	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version --short: %v", err)
	}
	if strings.TrimSpace(out) != "1.4.0" {
		t.Errorf("version --short = %q", out)
	}

	out, err = execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json: %v", err)
	}
	var info versionInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("version --json is not JSON: %v\n%s", err, out)
	}
	if info.Commit != "abc123" || info.Date != "2026-01-02" || len(info.Ecosystems) != len(template.AllEcosystems()) {
		t.Errorf("version --json = %+v", info)
	}

	out, _ = execute(t, "version")
	if !strings.Contains(out, "stackboot version 1.4.0 (commit: abc123") {
		t.Errorf("version = %q", out)
	}
	if !strings.Contains(out, "ecosystems: ") || !strings.Contains(out, "kotlin") || !strings.Contains(out, runtime.Version()) {
		t.Errorf("version lacks runtime or ecosystem lines: %q", out)
	}
}

func TestEnginesCommand(t *testing.T) {
	out, err := execute(t, "engines")
	if err != nil {
		t.Fatalf("engines: %v", err)
	}
	for _, want := range []string{"springboot", "Spring Boot", "spring-boot", "dotnet", "aspnetcore"} {
		if !strings.Contains(out, want) {
			t.Errorf("engines output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	home := t.TempDir()
	run := func(args ...string) (string, error) {
		resetFlags(rootCmd)
		t.Setenv("HOME", home)
		var buf bytes.Buffer
		rootCmd.SetOut(&buf)
		rootCmd.SetErr(&buf)
		rootCmd.SetArgs(args)
		err := rootCmd.ExecuteContext(context.Background())
		return buf.String(), err
	}

	if _, err := run("config", "set", "probe_timeout", "45s"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := run("config", "get", "probe_timeout")
	if err != nil || strings.TrimSpace(out) != "45s" {
		t.Errorf("config get = %q, %v", out, err)
	}
	if _, err := os.Stat(filepath.Join(home, ".stackboot", "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	out, err = run("config", "list")
	if err != nil {
		t.Fatalf("config list: %v", err)
	}
	if !strings.Contains(out, "initializr_url") || !strings.Contains(out, "https://start.spring.io") {
		t.Errorf("config list = %q", out)
	}

	if _, err := run("config", "set", "probe_timeout", "soon"); err == nil {
		t.Error("expected an error for an invalid duration")
	}
	if _, err := run("config", "get", "colour"); err == nil {
		t.Error("expected an error for an unknown key")
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := writeFile(t, dir, "ok.yaml", nodeTemplate)
		out, err := execute(t, "validate", path)
		if err != nil {
			t.Fatalf("validate: %v\n%s", err, out)
		}
		if !strings.Contains(out, "[ OK ] schema") || !strings.Contains(out, "workspace 0: Node.js in . (1 pre, 0 post)") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("schema issue", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "workspaces:\n  - general:\n      projectName: api\n")
		out, err := execute(t, "validate", path)
		if err == nil {
			t.Fatal("expected an error")
		}
		if !strings.Contains(out, "[FAIL]") || !strings.Contains(out, "/workspaces/0/general") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("pre dependency without version", func(t *testing.T) {
		path := writeFile(t, dir, "nover.hcl", `workspace {
  general {
    ecosystem = "vue"
  }
  dependencies "pre" {
    dependency "node" {}
  }
}
`)
		out, err := execute(t, "validate", path)
		var ve *template.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("error = %v, want ValidationError\n%s", err, out)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := execute(t, "validate", filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestCreateCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "node.yaml", nodeTemplate)
	outRoot := filepath.Join(dir, "out")

	t.Run("success", func(t *testing.T) {
		eng := &fakeEngine{eco: template.NodeJS}
		useFakes(t, eng, fakeProbe{"node": "v20.11.0"})

		out, err := execute(t, "create", "-t", path, "-o", outRoot)
		if err != nil {
			t.Fatalf("create: %v\n%s", err, out)
		}
		if eng.generated != 1 {
			t.Errorf("generated %d time(s), want 1", eng.generated)
		}
		data, err := os.ReadFile(filepath.Join(outRoot, "api", "docs", "README.md"))
		if err != nil || string(data) != "hello" {
			t.Errorf("README.md = %q, %v", data, err)
		}
		if !strings.Contains(out, "[ OK ] node 20.11.0") || !strings.Contains(out, "success in") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("unmet dependency", func(t *testing.T) {
		eng := &fakeEngine{eco: template.NodeJS}
		useFakes(t, eng, fakeProbe{"node": "v16.20.0"})

		out, err := execute(t, "create", "-t", path, "-o", outRoot)
		var re *orchestrator.RunError
		if !errors.As(err, &re) || re.Category != orchestrator.CategoryDependency {
			t.Fatalf("error = %v, want dependency RunError", err)
		}
		if eng.generated != 0 {
			t.Error("engine must not run when a required dependency is unmet")
		}
		if !strings.Contains(out, "Error (dependency)") || !strings.Contains(out, "optional: true") {
			t.Errorf("output:\n%s", out)
		}
	})

	t.Run("missing template flag", func(t *testing.T) {
		if _, err := execute(t, "create"); err == nil {
			t.Error("expected an error without --template")
		}
	})

	t.Run("unknown ecosystem", func(t *testing.T) {
		bad := writeFile(t, dir, "cobol.hcl", "workspace {\n  general {\n    ecosystem = \"cobol\"\n  }\n}\n")
		out, err := execute(t, "create", "-t", bad)
		var re *orchestrator.RunError
		if !errors.As(err, &re) || re.Category != orchestrator.CategoryTemplate {
			t.Fatalf("error = %v, want template RunError\n%s", err, out)
		}
	})
}

func TestDoctorCommand(t *testing.T) {
	useFakes(t, &fakeEngine{eco: template.NodeJS}, fakeProbe{"java": "openjdk 21.0.2 2024-01-16", "node": "v20.11.0"})

	out, err := execute(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	for _, want := range []string{"[ OK ] java 21", "[MISS] dotnet not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}

	dir := t.TempDir()
	path := writeFile(t, dir, "t.yaml", strings.Replace(nodeTemplate, `"18+"`, `"22+"`, 1))
	out, err = execute(t, "doctor", "-t", path)
	if err == nil {
		t.Fatalf("expected unmet dependency error\n%s", out)
	}
	if !strings.Contains(out, "Workspace 0 (Node.js):") || !strings.Contains(out, "[FAIL] node") {
		t.Errorf("output:\n%s", out)
	}
}

func TestPromptOverrides(t *testing.T) {
	orig := askOne
	t.Cleanup(func() { askOne = orig })

	var asked []string
	askOne = func(p survey.Prompt, response interface{}, _ ...survey.AskOpt) error {
		msg := p.(*survey.Input).Message
		asked = append(asked, msg)
		answer := "shop"
		if msg == "Base package" {
			answer = "com.example.shop"
		}
		*response.(*string) = answer
		return nil
	}

	name := "declared"
	tpl := &template.Template{Workspaces: []template.Workspace{
		{General: &template.General{Ecosystem: template.Vue, ProjectName: &name}},
		{General: &template.General{Ecosystem: template.Quarkus}},
	}}

	ov := plan.Overrides{Name: "from-flag"}
	if err := promptOverrides(tpl, &ov); err != nil {
		t.Fatalf("promptOverrides() error: %v", err)
	}
	if len(asked) != 1 || asked[0] != "Base package" {
		t.Errorf("asked = %v, want only the package", asked)
	}
	if ov.Name != "from-flag" || ov.Package != "com.example.shop" {
		t.Errorf("overrides = %+v", ov)
	}

	asked = nil
	ov = plan.Overrides{}
	full := &template.Template{Workspaces: []template.Workspace{
		{General: &template.General{Ecosystem: template.Vue, ProjectName: &name, ProjectPackage: &name}},
	}}
	if err := promptOverrides(full, &ov); err != nil {
		t.Fatal(err)
	}
	if len(asked) != 0 {
		t.Errorf("asked = %v, want nothing when the template declares both", asked)
	}
}

func TestPromptPatterns(t *testing.T) {
	tests := []struct {
		value string
		name  bool
		pkg   bool
	}{
		{"shop", true, true},
		{"com.example.shop", true, true},
		{"my-app", true, false},
		{"-bad", false, false},
		{"com..example", true, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if got := projectNamePattern.MatchString(tt.value); got != tt.name {
			t.Errorf("projectNamePattern(%q) = %v, want %v", tt.value, got, tt.name)
		}
		if got := packagePattern.MatchString(tt.value); got != tt.pkg {
			t.Errorf("packagePattern(%q) = %v, want %v", tt.value, got, tt.pkg)
		}
	}
}
