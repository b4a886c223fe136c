package engine

import (
	"context"

	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/scaffold"
	"github.com/agentx-labs/stackboot/internal/template"
)

// npmBase is shared by the engines whose projects are managed by npm.
type npmBase struct{ base }

// InstallerFor implements Engine.
func (n *npmBase) InstallerFor(p plan.Plan, _ []template.Dependency) deps.Installer {
	return NewNpmInstaller(n.runner, p.ProjectDir(), n.opts.CommandTimeout)
}

func (n *npmBase) prepare(p plan.Plan) ([]string, error) {
	if err := n.mkdir(p.OutputPath); err != nil {
		return nil, err
	}
	return n.splitArgs(p)
}

// Angular generates projects with the Angular CLI fetched through npx.
type Angular struct{ npmBase }

// NewAngular returns the Angular engine.
func NewAngular(r runner.Runner, opts Options) *Angular {
	return &Angular{npmBase{base{eco: template.Angular, runner: r, opts: opts.withDefaults()}}}
}

// Generate implements Engine.
func (a *Angular) Generate(ctx context.Context, _ *template.Workspace, p plan.Plan) error {
	extra, err := a.prepare(p)
	if err != nil {
		return err
	}
	version := p.Version
	if version == "" {
		version = "latest"
	}
	args := append([]string{"-y", "-p", "@angular/cli@" + version, "ng", "new", p.Name, "--skip-git", "--defaults"}, extra...)
	return a.run(ctx, "ng new", toolCommand("npx", args...), p.OutputPath)
}

// React generates projects with create-next-app (--nextjs), Vite (--vite) or
// create-react-app.
type React struct{ npmBase }

// NewReact returns the React engine.
func NewReact(r runner.Runner, opts Options) *React {
	return &React{npmBase{base{eco: template.React, runner: r, opts: opts.withDefaults()}}}
}

// Generate implements Engine.
func (re *React) Generate(ctx context.Context, _ *template.Workspace, p plan.Plan) error {
	extra, err := re.prepare(p)
	if err != nil {
		return err
	}
	flags := parseFlags(extra, "--nextjs", "--next", "--vite", "--typescript", "--ts")
	ts := flags.has("--typescript", "--ts")

	var cmd runner.Command
	var step string
	switch {
	case flags.has("--nextjs", "--next"):
		step = "create-next-app"
		args := []string{"-y", "create-next-app@latest", p.Name, "--use-npm"}
		if ts {
			args = append(args, "--typescript")
		} else {
			args = append(args, "--javascript")
		}
		cmd = toolCommand("npx", append(args, flags.rest...)...)
	case flags.has("--vite"):
		step = "create vite"
		tmpl := "react"
		if ts {
			tmpl = "react-ts"
		}
		args := append([]string{"create", "vite@latest", p.Name, "--", "--template", tmpl}, flags.rest...)
		cmd = toolCommand("npm", args...)
	default:
		step = "create-react-app"
		args := []string{"-y", "create-react-app", p.Name}
		if ts {
			args = append(args, "--template", "typescript")
		}
		cmd = toolCommand("npx", append(args, flags.rest...)...)
	}
	return re.run(ctx, step, cmd, p.OutputPath)
}

// Vue generates projects with create-vue (--vite, --vue3) or the Vue CLI.
type Vue struct{ npmBase }

// NewVue returns the Vue engine.
func NewVue(r runner.Runner, opts Options) *Vue {
	return &Vue{npmBase{base{eco: template.Vue, runner: r, opts: opts.withDefaults()}}}
}

// Generate implements Engine.
func (v *Vue) Generate(ctx context.Context, _ *template.Workspace, p plan.Plan) error {
	extra, err := v.prepare(p)
	if err != nil {
		return err
	}
	flags := parseFlags(extra, "--vite", "--vue3")
	if flags.has("--vite", "--vue3") {
		args := append([]string{"create", "vue@latest", p.Name, "--", "--default"}, flags.rest...)
		return v.run(ctx, "create vue", toolCommand("npm", args...), p.OutputPath)
	}
	args := append([]string{"-y", "@vue/cli", "create", "--default", p.Name}, flags.rest...)
	return v.run(ctx, "vue create", toolCommand("npx", args...), p.OutputPath)
}

// NodeJS scaffolds an Express service: npm init, dependency install and a
// minimal server entry point.
type NodeJS struct{ npmBase }

// NewNodeJS returns the Node.js engine.
func NewNodeJS(r runner.Runner, opts Options) *NodeJS {
	return &NodeJS{npmBase{base{eco: template.NodeJS, runner: r, opts: opts.withDefaults()}}}
}

// Generate implements Engine.
func (n *NodeJS) Generate(ctx context.Context, _ *template.Workspace, p plan.Plan) error {
	extra, err := n.prepare(p)
	if err != nil {
		return err
	}
	dir := p.ProjectDir()
	if err := n.mkdir(dir); err != nil {
		return err
	}
	flags := parseFlags(extra, "--typescript", "--ts", "--mongodb", "--postgres", "--postgresql", "--cors", "--morgan", "--minimal")
	ts := flags.has("--typescript", "--ts")

	if err := n.run(ctx, "npm init", toolCommand("npm", "init", "-y"), dir); err != nil {
		return err
	}

	install := append([]string{"install"}, nodePackages(flags, ts)...)
	if err := n.run(ctx, "npm install", toolCommand("npm", install...), dir); err != nil {
		return err
	}

	if err := writeNodeSkeleton(dir, p.Name, ts); err != nil {
		return &GenerationError{Ecosystem: n.eco, Step: "write project skeleton", Cause: err}
	}

	scripts := []string{"pkg", "set", "scripts.start=node src/index.js", "scripts.dev=nodemon src/index.js"}
	if ts {
		scripts = []string{"pkg", "set", "scripts.start=node dist/index.js", "scripts.dev=ts-node src/index.ts", "scripts.build=tsc", "scripts.watch=nodemon src/index.ts"}
	}
	return n.run(ctx, "npm pkg set", toolCommand("npm", scripts...), dir)
}

func nodePackages(flags flagSet, ts bool) []string {
	pkgs := []string{"express"}
	withTypes := func(pkg, types string) {
		pkgs = append(pkgs, pkg)
		if ts && types != "" {
			pkgs = append(pkgs, types)
		}
	}
	if ts {
		pkgs = append(pkgs, "typescript", "@types/node", "@types/express", "ts-node", "nodemon")
	}
	if flags.has("--mongodb") {
		withTypes("mongoose", "")
	}
	if flags.has("--postgres", "--postgresql") {
		withTypes("pg", "@types/pg")
	}
	if flags.has("--cors") {
		withTypes("cors", "@types/cors")
	}
	if flags.has("--morgan") {
		withTypes("morgan", "@types/morgan")
	}
	if !flags.has("--minimal") {
		pkgs = append(pkgs, "helmet", "dotenv")
	}
	return pkgs
}

func writeNodeSkeleton(dir, name string, ts bool) error {
	set := "node-js"
	if ts {
		set = "node-ts"
	}
	_, err := scaffold.Render(set, scaffold.Data{Name: name}, dir)
	return err
}
