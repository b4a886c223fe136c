package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

//go:embed all:skeletons
var skeletonFS embed.FS

const root = "skeletons"

// packageSegment is replaced in skeleton paths by the package directory.
const packageSegment = "__package__"

// Data holds the values available to skeleton templates.
type Data struct {
	Name    string
	Package string
	// Versions holds tool versions keyed by name, e.g. "kotlin".
	Versions map[string]string
}

// packageDir turns a dotted package into a slash path.
func (d Data) packageDir() string {
	return strings.ReplaceAll(d.Package, ".", "/")
}

// Result lists the files written, relative to the output directory.
type Result struct {
	OutputDir string
	Files     []string
}

// Sets returns the names of the embedded skeletons.
func Sets() []string {
	entries, _ := fs.ReadDir(skeletonFS, root)
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Render writes the named skeleton into outputDir. Existing files are never
// overwritten; finding one is an error and leaves earlier files in place.
func Render(set string, data Data, outputDir string) (*Result, error) {
	base := path.Join(root, set)
	if _, err := fs.Stat(skeletonFS, base); err != nil {
		return nil, fmt.Errorf("skeleton %q not found: %w", set, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	res := &Result{OutputDir: outputDir}
	err := fs.WalkDir(skeletonFS, base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, base), "/")
		if rel == "" {
			return nil
		}
		out := path.Clean(strings.ReplaceAll(strings.TrimSuffix(rel, ".tmpl"), packageSegment, data.packageDir()))
		if !filepath.IsLocal(filepath.FromSlash(out)) {
			return fmt.Errorf("%s escapes the output directory", out)
		}
		dest := filepath.Join(outputDir, filepath.FromSlash(out))
		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}

		body, err := fs.ReadFile(skeletonFS, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}
		if strings.HasSuffix(rel, ".tmpl") {
			if body, err = execute(rel, body, data); err != nil {
				return err
			}
		}

		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%s already exists", dest)
			}
			return fmt.Errorf("creating %s: %w", dest, err)
		}
		if _, err := f.Write(body); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		res.Files = append(res.Files, out)
		return nil
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

func execute(name string, body []byte, data Data) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
