package descriptor

import (
	"fmt"
	"os"
	"strings"

	"github.com/agentx-labs/stackboot/internal/template"
)

// ProcessorChange reports what the annotation-processor pass did.
type ProcessorChange string

const (
	ProcessorNone     ProcessorChange = "none"
	ProcessorAppended ProcessorChange = "appended"
	ProcessorCreated  ProcessorChange = "created"
	ProcessorPresent  ProcessorChange = "present"
	ProcessorNoPlugin ProcessorChange = "no-plugin"
)

// Patch is the result of patching a descriptor. Text is always the full
// document to write back.
type Patch struct {
	Text      string
	Added     bool
	Processor ProcessorChange
	// PluginAdded is set when a compiler plugin had to be applied for the
	// processor, e.g. kapt in a Kotlin DSL script.
	PluginAdded bool
	// Hints are follow-up steps the patch could not take itself.
	Hints []string
}

// Changed reports whether the patch differs from the input document.
func (p *Patch) Changed() bool {
	return p != nil && (p.Added || p.PluginAdded || p.Processor == ProcessorAppended || p.Processor == ProcessorCreated)
}

// ErrorKind classifies a PatchError.
type ErrorKind string

const (
	KindMisformat         ErrorKind = "misformat"
	KindAlreadyPresent    ErrorKind = "already-present"
	KindInvalidCoordinate ErrorKind = "invalid-coordinate"
)

// PatchError explains why a dependency was not inserted. It is never fatal
// to a run; Hints carry the manual remediation.
type PatchError struct {
	Kind       ErrorKind
	Coordinate string
	File       string
	Hints      []string
}

func (e *PatchError) Error() string {
	where := "descriptor"
	if e.File != "" {
		where = e.File
	}
	switch e.Kind {
	case KindAlreadyPresent:
		return fmt.Sprintf("dependency %s already present in %s", e.Coordinate, where)
	case KindMisformat:
		return fmt.Sprintf("could not locate the dependency section of %s for %s", where, e.Coordinate)
	case KindInvalidCoordinate:
		return fmt.Sprintf("invalid dependency coordinate %q: expected group:artifact", e.Coordinate)
	default:
		return fmt.Sprintf("patching %s: %s", where, e.Kind)
	}
}

// Patcher inserts one dependency into a descriptor's text.
//
// When a *PatchError is returned the Patch is still non-nil and its Text is
// the document to write, since the processor pass may have changed it.
type Patcher interface {
	PatchDependency(text string, dep template.Dependency) (*Patch, error)
}

// PatchFile applies patcher to the file at path and writes the document back
// when it changed. A read or write failure is returned as a plain error.
func PatchFile(path string, patcher Patcher, dep template.Dependency) (*Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	p, perr := patcher.PatchDependency(string(data), dep)
	if pe, ok := perr.(*PatchError); ok {
		pe.File = path
	}
	if p != nil && p.Text != string(data) {
		info, err := os.Stat(path)
		if err != nil {
			return p, fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(p.Text), info.Mode().Perm()); err != nil {
			return p, fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return p, perr
}

// coordinate is a parsed group:artifact[:version] reference.
type coordinate struct {
	Group    string
	Artifact string
	Version  string
}

func (c coordinate) String() string {
	return c.Group + ":" + c.Artifact
}

// KotlinGroup infers the group of well-known Kotlin artifacts named without
// one. It returns "" for anything else.
func KotlinGroup(artifact string) string {
	switch {
	case strings.HasPrefix(artifact, "ktor"):
		return "io.ktor"
	case strings.HasPrefix(artifact, "kotlinx"):
		return "org.jetbrains.kotlinx"
	case strings.HasPrefix(artifact, "kotlin"):
		return "org.jetbrains.kotlin"
	}
	return ""
}

// parseCoordinate splits dep.Package(). A bare artifact name is accepted
// only when infer knows its group.
func parseCoordinate(dep template.Dependency, infer func(string) string) (coordinate, error) {
	raw := dep.Package()
	parts := strings.Split(raw, ":")
	if len(parts) == 1 && infer != nil {
		artifact := strings.TrimSpace(parts[0])
		if group := infer(artifact); group != "" && artifact != "" {
			return coordinate{Group: group, Artifact: artifact, Version: dep.Version}, nil
		}
	}
	if len(parts) < 2 || len(parts) > 3 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return coordinate{}, &PatchError{
			Kind:       KindInvalidCoordinate,
			Coordinate: raw,
			Hints:      []string{"Set packageName to group:artifact, e.g. org.projectlombok:lombok"},
		}
	}
	c := coordinate{Group: strings.TrimSpace(parts[0]), Artifact: strings.TrimSpace(parts[1]), Version: dep.Version}
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		c.Version = strings.TrimSpace(parts[2])
	}
	return c, nil
}

// processorKeywords mark dependencies that must also be registered as
// annotation processors.
var processorKeywords = []string{"lombok", "mapstruct-processor", "processor"}

// IsAnnotationProcessor reports whether dep needs the processor pass.
func IsAnnotationProcessor(dep template.Dependency) bool {
	name := strings.ToLower(dep.Name + " " + dep.PackageName)
	for _, kw := range processorKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// indentUnit guesses one level of indentation from the smallest non-empty
// leading whitespace in text.
func indentUnit(text string) string {
	best := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue
		}
		lead := line[:len(line)-len(trimmed)]
		if lead[0] == '\t' {
			return "\t"
		}
		if best == "" || len(lead) < len(best) {
			best = lead
		}
	}
	if best == "" {
		return "    "
	}
	return best
}

// lineIndent returns the leading whitespace of the line containing pos.
func lineIndent(text string, pos int) string {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[start:end]
}

// insertBefore places block (complete lines, each ending in "\n") before the
// tag at pos. When the tag is alone on its line the block goes at the start
// of that line; otherwise the tag is moved onto its own line with indent.
func insertBefore(text string, pos int, block, indent string) string {
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	if strings.TrimSpace(text[lineStart:pos]) == "" {
		return text[:lineStart] + block + text[lineStart:]
	}
	return text[:pos] + "\n" + block + indent + text[pos:]
}

func repeat(unit string, n int) string {
	return strings.Repeat(unit, n)
}
