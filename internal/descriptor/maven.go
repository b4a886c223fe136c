package descriptor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agentx-labs/stackboot/internal/template"
)

// DefaultMavenAnchor matches the first <dependencies> block whose first
// entry carries only groupId and artifactId, which is how generators write
// their default dependency list. Import entries under
// <dependencyManagement> always declare a version and are skipped.
var DefaultMavenAnchor = regexp.MustCompile(
	`(?m)^([ \t]*)<dependencies>\s*<dependency>\s*<groupId>[^<]*</groupId>\s*<artifactId>[^<]*</artifactId>\s*</dependency>`,
)

var (
	compilerPluginRe = regexp.MustCompile(`<artifactId>\s*maven-compiler-plugin\s*</artifactId>`)
	dependencyLineRe = regexp.MustCompile(`\n([ \t]*)<dependency>`)
)

// MavenPatcher patches pom.xml documents.
type MavenPatcher struct {
	// Anchor overrides DefaultMavenAnchor. Its first capture group, when
	// present, must be the indentation of the <dependencies> line.
	Anchor *regexp.Regexp
}

// PatchDependency implements Patcher.
func (m *MavenPatcher) PatchDependency(text string, dep template.Dependency) (*Patch, error) {
	p := &Patch{Text: text, Processor: ProcessorNone}

	coord, err := parseCoordinate(dep, nil)
	if err != nil {
		return p, err
	}

	var perr error
	switch {
	case hasArtifact(text, coord.Artifact):
		perr = &PatchError{Kind: KindAlreadyPresent, Coordinate: coord.String()}
	default:
		patched, ok := m.insertDependency(text, coord, dep.Extension)
		if !ok {
			perr = &PatchError{
				Kind:       KindMisformat,
				Coordinate: coord.String(),
				Hints: []string{
					"Add the dependency to pom.xml by hand",
					"Check that the generated <dependencies> block is still intact",
				},
			}
			break
		}
		p.Text, p.Added = patched, true
	}

	if IsAnnotationProcessor(dep) {
		p.Text, p.Processor = addProcessorPath(p.Text, coord)
	}
	return p, perr
}

func (m *MavenPatcher) anchor() *regexp.Regexp {
	if m.Anchor != nil {
		return m.Anchor
	}
	return DefaultMavenAnchor
}

func hasArtifact(text, artifact string) bool {
	re := regexp.MustCompile(`<artifactId>\s*` + regexp.QuoteMeta(artifact) + `\s*</artifactId>`)
	return re.MatchString(text)
}

func (m *MavenPatcher) insertDependency(text string, c coordinate, testScope bool) (string, bool) {
	loc := m.anchor().FindStringSubmatchIndex(text)
	if loc == nil {
		return text, false
	}
	match := text[loc[0]:loc[1]]

	unit := indentUnit(text)
	outer := ""
	if len(loc) >= 4 && loc[2] >= 0 {
		outer = text[loc[2]:loc[3]]
	}
	inner := outer + unit
	if sub := dependencyLineRe.FindStringSubmatch(match); sub != nil {
		inner = sub[1]
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(inner + "<dependency>\n")
	writeGAV(&b, inner+unit, c)
	if testScope {
		b.WriteString(inner + unit + "<scope>test</scope>\n")
	}
	b.WriteString(inner + "</dependency>")

	return text[:loc[1]] + b.String() + text[loc[1]:], true
}

func writeGAV(b *strings.Builder, indent string, c coordinate) {
	fmt.Fprintf(b, "%s<groupId>%s</groupId>\n", indent, c.Group)
	fmt.Fprintf(b, "%s<artifactId>%s</artifactId>\n", indent, c.Artifact)
	if c.Version != "" {
		fmt.Fprintf(b, "%s<version>%s</version>\n", indent, c.Version)
	}
}

// addProcessorPath registers c in the annotationProcessorPaths of the
// maven-compiler-plugin, creating the block when the plugin has none.
func addProcessorPath(text string, c coordinate) (string, ProcessorChange) {
	start, end, ok := compilerPluginSpan(text)
	if !ok {
		return text, ProcessorNoPlugin
	}
	span := text[start:end]
	unit := indentUnit(text)

	if open := strings.Index(span, "<annotationProcessorPaths>"); open >= 0 {
		closeRel := strings.Index(span[open:], "</annotationProcessorPaths>")
		if closeRel < 0 {
			return text, ProcessorNoPlugin
		}
		closeAt := start + open + closeRel
		if hasArtifact(text[start+open:closeAt], c.Artifact) {
			return text, ProcessorPresent
		}
		indent := lineIndent(text, closeAt)
		return insertBefore(text, closeAt, pathBlock(indent+unit, unit, c), indent), ProcessorAppended
	}

	if open := strings.Index(span, "<configuration>"); open >= 0 {
		closeRel := strings.Index(span[open:], "</configuration>")
		if closeRel < 0 {
			return text, ProcessorNoPlugin
		}
		closeAt := start + open + closeRel
		indent := lineIndent(text, closeAt)
		block := indent + unit + "<annotationProcessorPaths>\n" +
			pathBlock(indent+unit+unit, unit, c) +
			indent + unit + "</annotationProcessorPaths>\n"
		return insertBefore(text, closeAt, block, indent), ProcessorCreated
	}

	// Plugin without configuration: add one before </plugin>.
	closeAt := end - len("</plugin>")
	indent := lineIndent(text, closeAt)
	block := indent + unit + "<configuration>\n" +
		indent + repeat(unit, 2) + "<annotationProcessorPaths>\n" +
		pathBlock(indent+repeat(unit, 3), unit, c) +
		indent + repeat(unit, 2) + "</annotationProcessorPaths>\n" +
		indent + unit + "</configuration>\n"
	return insertBefore(text, closeAt, block, indent), ProcessorCreated
}

func pathBlock(indent, unit string, c coordinate) string {
	var b strings.Builder
	b.WriteString(indent + "<path>\n")
	writeGAV(&b, indent+unit, c)
	b.WriteString(indent + "</path>\n")
	return b.String()
}

// compilerPluginSpan returns the byte range from <plugin> through </plugin>
// of the first maven-compiler-plugin declaration.
func compilerPluginSpan(text string) (start, end int, ok bool) {
	loc := compilerPluginRe.FindStringIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	start = strings.LastIndex(text[:loc[0]], "<plugin>")
	if start < 0 {
		return 0, 0, false
	}
	closeRel := strings.Index(text[loc[1]:], "</plugin>")
	if closeRel < 0 {
		return 0, 0, false
	}
	return start, loc[1] + closeRel + len("</plugin>"), true
}
