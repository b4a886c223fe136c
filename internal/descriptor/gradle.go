package descriptor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agentx-labs/stackboot/internal/template"
)

var (
	gradleDependenciesRe = regexp.MustCompile(`(?m)^dependencies\s*\{[ \t]*$`)
	gradlePluginsRe      = regexp.MustCompile(`(?m)^plugins\s*\{[ \t]*$`)
	kaptAppliedRe        = regexp.MustCompile(`kotlin\(\s*"kapt"\s*\)|id\(\s*"org\.jetbrains\.kotlin\.kapt"\s*\)|libs\.plugins\.kotlin\.kapt`)
	kotlinJvmVersionRe   = regexp.MustCompile(`kotlin\(\s*"jvm"\s*\)\s*version\s*"([^"]+)"`)
)

// GradlePatcher patches build.gradle (Groovy) or build.gradle.kts (Kotlin
// DSL) scripts. Only the top-level dependencies block is considered.
type GradlePatcher struct {
	KotlinDSL bool
	// InferGroup, when set, completes bare artifact names.
	InferGroup func(artifact string) string
}

// PatchDependency implements Patcher.
func (g *GradlePatcher) PatchDependency(text string, dep template.Dependency) (*Patch, error) {
	p := &Patch{Text: text, Processor: ProcessorNone}

	coord, err := parseCoordinate(dep, g.InferGroup)
	if err != nil {
		return p, err
	}

	loc := gradleDependenciesRe.FindStringIndex(text)
	if loc == nil {
		return p, &PatchError{
			Kind:       KindMisformat,
			Coordinate: coord.String(),
			Hints: []string{
				"Add the dependency to the build script by hand",
				"Check that the script has a top-level dependencies { } block",
			},
		}
	}

	unit := indentUnit(text)
	var lines []string

	configuration := "implementation"
	if dep.Extension {
		configuration = "testImplementation"
	}
	present := g.declared(text, coord)
	if !present {
		lines = append(lines, unit+g.line(configuration, coord))
		p.Added = true
	}

	if IsAnnotationProcessor(dep) {
		if g.processorDeclared(text, coord) {
			p.Processor = ProcessorPresent
		} else {
			lines = append(lines, unit+g.line(g.processorConfiguration(), coord))
			p.Processor = ProcessorCreated
		}
	}

	if len(lines) > 0 {
		insert := "\n" + strings.Join(lines, "\n")
		p.Text = text[:loc[1]] + insert + text[loc[1]:]
	}
	if g.KotlinDSL && p.Processor == ProcessorCreated {
		g.applyKapt(p, unit)
	}
	if present {
		return p, &PatchError{Kind: KindAlreadyPresent, Coordinate: coord.String()}
	}
	return p, nil
}

func (g *GradlePatcher) line(configuration string, c coordinate) string {
	notation := c.String()
	if c.Version != "" {
		notation += ":" + c.Version
	}
	if g.KotlinDSL {
		return fmt.Sprintf(`%s("%s")`, configuration, notation)
	}
	return fmt.Sprintf("%s '%s'", configuration, notation)
}

func (g *GradlePatcher) processorConfiguration() string {
	if g.KotlinDSL {
		return "kapt"
	}
	return "annotationProcessor"
}

// applyKapt makes sure the kapt plugin is applied so kapt(...) lines
// resolve. Without a plugins block the script is left alone and a hint is
// recorded instead.
func (g *GradlePatcher) applyKapt(p *Patch, unit string) {
	if kaptAppliedRe.MatchString(p.Text) {
		return
	}
	loc := gradlePluginsRe.FindStringIndex(p.Text)
	if loc == nil {
		p.Hints = append(p.Hints, `Apply the kapt plugin: add kotlin("kapt") to the plugins { } block`)
		return
	}
	line := `kotlin("kapt")`
	if m := kotlinJvmVersionRe.FindStringSubmatch(p.Text); m != nil {
		line += ` version "` + m[1] + `"`
	} else {
		p.Hints = append(p.Hints, `Pin the kapt plugin to the Kotlin plugin version if the build cannot resolve kotlin("kapt")`)
	}
	p.Text = p.Text[:loc[1]] + "\n" + unit + line + p.Text[loc[1]:]
	p.PluginAdded = true
}

// declared reports whether the coordinate is referenced by any
// configuration other than the processor one.
func (g *GradlePatcher) declared(text string, c coordinate) bool {
	re := regexp.MustCompile(`(?m)^\s*(\w+)\s*\(?\s*["']` + regexp.QuoteMeta(c.String()) + `[:"']`)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if m[1] != g.processorConfiguration() {
			return true
		}
	}
	return false
}

func (g *GradlePatcher) processorDeclared(text string, c coordinate) bool {
	re := regexp.MustCompile(`(?m)^\s*` + g.processorConfiguration() + `\s*\(?\s*["']` + regexp.QuoteMeta(c.String()) + `[:"']`)
	return re.MatchString(text)
}
