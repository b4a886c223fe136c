// Package changeset applies the file-tree edits declared in a workspace's
// structure block to a generated project.
package changeset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/stackboot/internal/template"
)

// Op is the kind of edit an Entry records.
type Op string

const (
	OpMkdir  Op = "mkdir"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Status is the outcome of one edit.
type Status string

const (
	StatusCreated  Status = "created"
	StatusWritten  Status = "written"
	StatusRemoved  Status = "removed"
	StatusAbsent   Status = "absent"
	StatusFailed   Status = "failed"
	StatusRejected Status = "rejected"
)

// Entry records one attempted edit. Path is relative to the project root.
type Entry struct {
	Op     Op
	Path   string
	Status Status
	Err    error
}

// Result lists every edit in the order it was attempted.
type Result struct {
	// Skipped is set when the structure does not select custom mode.
	Skipped bool
	Entries []Entry
}

// Failed counts entries that did not succeed.
func (r *Result) Failed() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, e := range r.Entries {
		if e.Status == StatusFailed || e.Status == StatusRejected {
			n++
		}
	}
	return n
}

// Apply runs every add changeset, then every remove changeset, each in
// declaration order, against root. Individual failures are recorded and
// never stop the remaining edits.
func Apply(s *template.Structure, root string) *Result {
	if !s.Custom() {
		return &Result{Skipped: true}
	}

	res := &Result{}
	for _, cs := range s.ChangeSets {
		if cs.Type != template.ChangeAdd {
			continue
		}
		for _, p := range cs.Paths {
			res.add(root, p)
		}
	}
	for _, cs := range s.ChangeSets {
		if cs.Type != template.ChangeRemove {
			continue
		}
		for _, p := range cs.Paths {
			res.remove(root, p)
		}
	}
	return res
}

func (r *Result) add(root string, p template.PathSpec) {
	target, err := resolve(root, p.Name)
	if err != nil {
		r.Entries = append(r.Entries, Entry{Op: OpWrite, Path: p.Name, Status: StatusRejected, Err: err})
		return
	}

	if p.AutoCreate {
		e := Entry{Op: OpMkdir, Path: p.Name, Status: StatusCreated}
		if err := os.MkdirAll(target, 0o755); err != nil {
			e.Status, e.Err = StatusFailed, err
		}
		r.Entries = append(r.Entries, e)
	}

	if strings.TrimSpace(p.Content) != "" {
		e := Entry{Op: OpWrite, Path: p.Name, Status: StatusWritten}
		if err := os.WriteFile(target, []byte(p.Content), 0o644); err != nil {
			e.Status, e.Err = StatusFailed, fmt.Errorf("writing %s: %w", p.Name, err)
		}
		r.Entries = append(r.Entries, e)
	}
}

func (r *Result) remove(root string, p template.PathSpec) {
	e := Entry{Op: OpRemove, Path: p.Name}
	target, err := resolve(root, p.Name)
	if err != nil {
		e.Status, e.Err = StatusRejected, err
		r.Entries = append(r.Entries, e)
		return
	}

	switch _, err := os.Lstat(target); {
	case errors.Is(err, fs.ErrNotExist):
		e.Status = StatusAbsent
	case err != nil:
		e.Status, e.Err = StatusFailed, err
	default:
		e.Status = StatusRemoved
		if err := os.RemoveAll(target); err != nil {
			e.Status, e.Err = StatusFailed, fmt.Errorf("removing %s: %w", p.Name, err)
		}
	}
	r.Entries = append(r.Entries, e)
}

// resolve joins name under root, refusing absolute paths and paths that
// climb out of root.
func resolve(root, name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("path %q is outside the project directory", name)
	}
	return filepath.Join(root, rel), nil
}
