package descriptor

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/agentx-labs/stackboot/internal/template"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

func kindOf(err error) ErrorKind {
	var pe *PatchError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func TestMavenPatcher_InsertAfterAnchor(t *testing.T) {
	pom := readFixture(t, "quarkus-pom.xml")
	dep := template.Dependency{Name: "jackson", PackageName: "com.fasterxml.jackson.core:jackson-databind", Version: "2.17.1"}

	p, err := (&MavenPatcher{}).PatchDependency(pom, dep)
	if err != nil {
		t.Fatalf("PatchDependency() error: %v", err)
	}
	if !p.Added || p.Processor != ProcessorNone {
		t.Errorf("Added=%v Processor=%s", p.Added, p.Processor)
	}

	want := "            <artifactId>quarkus-arc</artifactId>\n" +
		"        </dependency>\n" +
		"        <dependency>\n" +
		"            <groupId>com.fasterxml.jackson.core</groupId>\n" +
		"            <artifactId>jackson-databind</artifactId>\n" +
		"            <version>2.17.1</version>\n" +
		"        </dependency>\n" +
		"        <dependency>\n" +
		"            <groupId>io.quarkus</groupId>\n" +
		"            <artifactId>quarkus-junit5</artifactId>\n"
	if !strings.Contains(p.Text, want) {
		t.Errorf("dependency not inserted after the anchor:\n%s", p.Text)
	}

	// The import BOM under dependencyManagement must be untouched.
	mgmt := p.Text[strings.Index(p.Text, "<dependencyManagement>"):strings.Index(p.Text, "</dependencyManagement>")]
	if strings.Contains(mgmt, "jackson") {
		t.Error("dependency inserted into dependencyManagement")
	}
}

func TestMavenPatcher_Idempotent(t *testing.T) {
	pom := readFixture(t, "quarkus-pom.xml")
	dep := template.Dependency{Name: "lombok", PackageName: "org.projectlombok:lombok", Version: "1.18.34"}
	m := &MavenPatcher{}

	once, err := m.PatchDependency(pom, dep)
	if err != nil {
		t.Fatalf("first PatchDependency() error: %v", err)
	}
	twice, err := m.PatchDependency(once.Text, dep)
	if kindOf(err) != KindAlreadyPresent {
		t.Fatalf("second call error = %v, want already-present", err)
	}
	if twice.Text != once.Text {
		t.Error("applying the patch twice changed the document")
	}
	if twice.Added || twice.Processor != ProcessorPresent || twice.Changed() {
		t.Errorf("second call Added=%v Processor=%s", twice.Added, twice.Processor)
	}
}

func TestMavenPatcher_ProcessorCreatesBlock(t *testing.T) {
	pom := readFixture(t, "quarkus-pom.xml")
	dep := template.Dependency{Name: "lombok", PackageName: "org.projectlombok:lombok", Version: "1.18.34"}

	p, err := (&MavenPatcher{}).PatchDependency(pom, dep)
	if err != nil {
		t.Fatalf("PatchDependency() error: %v", err)
	}
	if p.Processor != ProcessorCreated {
		t.Fatalf("Processor = %s, want created", p.Processor)
	}

	want := "                    <parameters>true</parameters>\n" +
		"                    <annotationProcessorPaths>\n" +
		"                        <path>\n" +
		"                            <groupId>org.projectlombok</groupId>\n" +
		"                            <artifactId>lombok</artifactId>\n" +
		"                            <version>1.18.34</version>\n" +
		"                        </path>\n" +
		"                    </annotationProcessorPaths>\n" +
		"                </configuration>\n"
	if !strings.Contains(p.Text, want) {
		t.Errorf("processor block not synthesized:\n%s", p.Text)
	}
	if strings.Count(p.Text, "<annotationProcessorPaths>") != 1 || strings.Count(p.Text, "</annotationProcessorPaths>") != 1 {
		t.Error("annotationProcessorPaths is not balanced")
	}
}

func TestMavenPatcher_ProcessorAppends(t *testing.T) {
	pom := readFixture(t, "spring-pom.xml")
	dep := template.Dependency{Name: "mapstruct-processor", PackageName: "org.mapstruct:mapstruct-processor", Version: "1.6.2"}

	p, err := (&MavenPatcher{}).PatchDependency(pom, dep)
	if err != nil {
		t.Fatalf("PatchDependency() error: %v", err)
	}
	if !p.Added || p.Processor != ProcessorAppended {
		t.Fatalf("Added=%v Processor=%s", p.Added, p.Processor)
	}

	want := "\t\t\t\t\t\t\t<artifactId>lombok</artifactId>\n" +
		"\t\t\t\t\t\t</path>\n" +
		"\t\t\t\t\t\t<path>\n" +
		"\t\t\t\t\t\t\t<groupId>org.mapstruct</groupId>\n" +
		"\t\t\t\t\t\t\t<artifactId>mapstruct-processor</artifactId>\n" +
		"\t\t\t\t\t\t\t<version>1.6.2</version>\n" +
		"\t\t\t\t\t\t</path>\n" +
		"\t\t\t\t\t</annotationProcessorPaths>\n"
	if !strings.Contains(p.Text, want) {
		t.Errorf("processor path not appended:\n%s", p.Text)
	}
	if strings.Count(p.Text, "<annotationProcessorPaths>") != 1 {
		t.Error("a second annotationProcessorPaths block was created")
	}
}

func TestMavenPatcher_ProcessorWithoutConfiguration(t *testing.T) {
	pom := "<project>\n" +
		"  <dependencies>\n" +
		"    <dependency>\n" +
		"      <groupId>a</groupId>\n" +
		"      <artifactId>b</artifactId>\n" +
		"    </dependency>\n" +
		"  </dependencies>\n" +
		"  <build>\n" +
		"    <plugins>\n" +
		"      <plugin>\n" +
		"        <artifactId>maven-compiler-plugin</artifactId>\n" +
		"      </plugin>\n" +
		"    </plugins>\n" +
		"  </build>\n" +
		"</project>\n"
	dep := template.Dependency{Name: "auto-value-processor", PackageName: "com.google.auto.value:auto-value", Version: "1.11.0"}

	p, err := (&MavenPatcher{}).PatchDependency(pom, dep)
	if err != nil {
		t.Fatalf("PatchDependency() error: %v", err)
	}
	if p.Processor != ProcessorCreated {
		t.Fatalf("Processor = %s, want created", p.Processor)
	}
	want := "        <artifactId>maven-compiler-plugin</artifactId>\n" +
		"        <configuration>\n" +
		"          <annotationProcessorPaths>\n" +
		"            <path>\n"
	if !strings.Contains(p.Text, want) {
		t.Errorf("configuration not synthesized:\n%s", p.Text)
	}
}

func TestMavenPatcher_NoCompilerPlugin(t *testing.T) {
	pom := "<project>\n  <dependencies>\n    <dependency>\n      <groupId>a</groupId>\n      <artifactId>b</artifactId>\n    </dependency>\n  </dependencies>\n</project>\n"
	p, err := (&MavenPatcher{}).PatchDependency(pom, template.Dependency{Name: "lombok", PackageName: "org.projectlombok:lombok"})
	if err != nil {
		t.Fatalf("PatchDependency() error: %v", err)
	}
	if !p.Added || p.Processor != ProcessorNoPlugin {
		t.Errorf("Added=%v Processor=%s", p.Added, p.Processor)
	}
	if strings.Contains(p.Text, "<version>") {
		t.Error("version written although none was declared")
	}
}

func TestMavenPatcher_ExtensionUsesTestScope(t *testing.T) {
	pom := readFixture(t, "spring-pom.xml")
	dep := template.Dependency{Name: "testcontainers", PackageName: "org.testcontainers:junit-jupiter", Version: "1.20.1", Extension: true}

	p, err := (&MavenPatcher{}).PatchDependency(pom, dep)
	if err != nil {
		t.Fatalf("PatchDependency() error: %v", err)
	}
	if !strings.Contains(p.Text, "\t\t\t<version>1.20.1</version>\n\t\t\t<scope>test</scope>\n\t\t</dependency>") {
		t.Errorf("test scope missing:\n%s", p.Text)
	}
}

func TestMavenPatcher_Errors(t *testing.T) {
	tests := []struct {
		name string
		pom  string
		dep  template.Dependency
		want ErrorKind
	}{
		{"missing anchor", readFixture(t, "no-anchor-pom.xml"), template.Dependency{Name: "x", PackageName: "g:a"}, KindMisformat},
		{"already present", readFixture(t, "no-anchor-pom.xml"), template.Dependency{Name: "junit", PackageName: "junit:junit"}, KindAlreadyPresent},
		{"bad coordinate", readFixture(t, "spring-pom.xml"), template.Dependency{Name: "guava"}, KindInvalidCoordinate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := (&MavenPatcher{}).PatchDependency(tt.pom, tt.dep)
			if kindOf(err) != tt.want {
				t.Fatalf("error = %v, want kind %s", err, tt.want)
			}
			if p == nil || p.Text != tt.pom {
				t.Error("failed patch must return the unchanged document")
			}
		})
	}
}

func TestMavenPatcher_MisformatStillRegistersProcessor(t *testing.T) {
	pom := "<project>\n  <build>\n    <plugins>\n      <plugin>\n        <artifactId>maven-compiler-plugin</artifactId>\n        <configuration>\n        </configuration>\n      </plugin>\n    </plugins>\n  </build>\n</project>\n"
	p, err := (&MavenPatcher{}).PatchDependency(pom, template.Dependency{Name: "lombok", PackageName: "org.projectlombok:lombok", Version: "1.18.34"})
	if kindOf(err) != KindMisformat {
		t.Fatalf("error = %v, want misformat", err)
	}
	if p.Processor != ProcessorCreated || !strings.Contains(p.Text, "<annotationProcessorPaths>") {
		t.Errorf("processor pass skipped: %s", p.Processor)
	}
}

func TestMavenPatcher_CustomAnchor(t *testing.T) {
	pom := "<project>\n  <dependencies><!-- generated -->\n  </dependencies>\n</project>\n"
	m := &MavenPatcher{Anchor: regexp.MustCompile(`(?m)^([ \t]*)<dependencies><!-- generated -->`)}

	p, err := m.PatchDependency(pom, template.Dependency{Name: "x", PackageName: "g:a", Version: "1"})
	if err != nil {
		t.Fatalf("PatchDependency() error: %v", err)
	}
	if !strings.Contains(p.Text, "<!-- generated -->\n    <dependency>\n      <groupId>g</groupId>") {
		t.Errorf("custom anchor not honoured:\n%s", p.Text)
	}
}
