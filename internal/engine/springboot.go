package engine

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/stackboot/internal/branding"
	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/agentx-labs/stackboot/internal/deps"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/runner"
	"github.com/agentx-labs/stackboot/internal/template"
)

// Spring Initializr defaults used when the workspace does not override them.
const (
	DefaultBootVersion  = "3.4.1"
	DefaultJavaVersion  = "21"
	DefaultStarterDeps  = "web,data-jpa,h2"
	DefaultPackaging    = "jar"
	maxStarterArchive   = 64 << 20
	springBootStepFetch = "download starter archive"
)

// SpringBoot generates projects by downloading a starter archive from Spring
// Initializr and unpacking it under the output path.
type SpringBoot struct{ base }

// NewSpringBoot returns the Spring Boot engine.
func NewSpringBoot(r runner.Runner, opts Options) *SpringBoot {
	return &SpringBoot{base{eco: template.SpringBoot, runner: r, opts: opts.withDefaults()}}
}

// starterFlags are the args that shape the Initializr request.
var starterFlags = []string{"--deps", "--java", "--boot-version", "--packaging"}

// starterProject selects the Initializr build type and language.
type starterProject struct {
	Type     string
	Language string
	Label    string
}

var (
	javaMavenStarter    = starterProject{Type: "maven-project", Language: "java", Label: "Spring Boot"}
	kotlinGradleStarter = starterProject{Type: "gradle-project", Language: "kotlin", Label: "Kotlin Spring Boot"}
)

// StarterURL builds the Initializr download URL for p. Recognised args are
// --deps=, --java=, --boot-version= and --packaging=.
func (s *SpringBoot) StarterURL(p plan.Plan) (string, error) {
	args, err := s.splitArgs(p)
	if err != nil {
		return "", err
	}
	boot := p.Version
	if boot == "" {
		boot = DefaultBootVersion
	}
	return s.starterURL(p, parseFlags(args, starterFlags...), javaMavenStarter, boot), nil
}

func (b *base) starterURL(p plan.Plan, flags flagSet, proj starterProject, boot string) string {
	pkg := p.Package
	if pkg == "" {
		pkg = "com.example." + strings.ToLower(p.Name)
	}
	group := pkg
	if i := strings.LastIndex(pkg, "."); i > 0 {
		group = pkg[:i]
	}

	q := url.Values{}
	q.Set("type", proj.Type)
	q.Set("language", proj.Language)
	q.Set("bootVersion", flags.get("--boot-version", boot))
	q.Set("baseDir", p.Name)
	q.Set("groupId", group)
	q.Set("artifactId", strings.ToLower(p.Name))
	q.Set("name", p.Name)
	q.Set("description", proj.Label+" project for "+p.Name)
	q.Set("packageName", pkg)
	q.Set("packaging", flags.get("--packaging", DefaultPackaging))
	q.Set("javaVersion", flags.get("--java", DefaultJavaVersion))
	q.Set("dependencies", strings.ReplaceAll(flags.get("--deps", DefaultStarterDeps), " ", ""))

	return strings.TrimRight(b.opts.InitializrURL, "/") + "/starter.zip?" + q.Encode()
}

// Generate implements Engine.
func (s *SpringBoot) Generate(ctx context.Context, _ *template.Workspace, p plan.Plan) error {
	if err := s.mkdir(p.OutputPath); err != nil {
		return err
	}
	u, err := s.StarterURL(p)
	if err != nil {
		return err
	}

	return s.fetchStarter(ctx, u, p.OutputPath)
}

// fetchStarter downloads the starter archive at u and unpacks it into dir.
func (b *base) fetchStarter(ctx context.Context, u, dir string) error {
	data, err := b.download(ctx, u)
	if err != nil {
		return err
	}
	if err := extractZip(data, dir); err != nil {
		return &GenerationError{Ecosystem: b.eco, Step: "extract starter archive", Cause: err}
	}
	return nil
}

func (b *base) download(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.FetchTimeout)
	defer cancel()

	ctxlog.FromContext(ctx).Info("downloading starter", "url", u)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &GenerationError{Ecosystem: b.eco, Step: springBootStepFetch, Cause: err}
	}
	req.Header.Set("User-Agent", branding.UserAgent())
	req.Header.Set("Accept", "application/zip")

	resp, err := b.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, &GenerationError{Ecosystem: b.eco, Step: springBootStepFetch, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &GenerationError{
			Ecosystem: b.eco,
			Step:      springBootStepFetch,
			ExitCode:  resp.StatusCode,
			Output:    string(body),
			Cause:     fmt.Errorf("initializr returned status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStarterArchive))
	if err != nil {
		return nil, &GenerationError{Ecosystem: b.eco, Step: springBootStepFetch, Cause: fmt.Errorf("reading archive: %w", err)}
	}
	return data, nil
}

// extractZip unpacks data into destDir, refusing entries that would land
// outside of it.
func extractZip(data []byte, destDir string) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}

	for _, f := range r.File {
		name := filepath.FromSlash(f.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry %q escapes the destination", f.Name)
		}
		destPath := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", f.Name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", f.Name, err)
		}
		if err := writeZipEntry(f, destPath); err != nil {
			return err
		}
	}
	return nil
}

func writeZipEntry(f *zip.File, destPath string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry: %w", err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", f.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	return out.Close()
}

// InstallerFor implements Engine.
func (s *SpringBoot) InstallerFor(p plan.Plan, _ []template.Dependency) deps.Installer {
	return &MavenInstaller{Runner: s.runner, ProjectDir: p.ProjectDir(), Timeout: s.opts.CommandTimeout}
}
