package deps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrVersionExtract means the probe succeeded but no usable version number
// could be read from its output.
var ErrVersionExtract = errors.New("failed to extract version")

// extractors read the version token for tools whose --version output does
// not start with the number.
var extractors = map[string]func(output string) string{
	// "openjdk 21.0.2 2024-01-16"
	"java": func(out string) string {
		return firstSegment(strings.Trim(field(out, 1), `"`))
	},
	// "Apache Maven 3.9.6 (bc0240f3...)"
	"mvn": func(out string) string { return field(out, 2) },
	// "v20.11.0"
	"node": func(out string) string {
		return strings.TrimPrefix(strings.TrimSpace(out), "v")
	},
	// "------\nGradle 8.5\n------"
	"gradle": func(out string) string { return after(out, "Gradle") },
	// "kotlinc-jvm 1.9.22 (JRE 21)" or "Kotlin version 1.9.22-release-704"
	"kotlin":  kotlinVersion,
	"kotlinc": kotlinVersion,
	// "8.0.101"
	"dotnet": func(out string) string { return firstLine(out) },
}

// ExtractVersion returns the version token for the named tool. Unknown
// tools fall back to the first dot-delimited segment of the output.
func ExtractVersion(name, output string) string {
	if fn, ok := extractors[strings.ToLower(name)]; ok {
		return strings.TrimSpace(fn(output))
	}
	return firstSegment(strings.TrimSpace(output))
}

// Satisfies evaluates constraint against a probe. Minimum constraints
// ("17+") compare the leading number of actual; exact constraints only
// require the literal constraint to appear in output.
func Satisfies(constraint, actual, output string) (bool, error) {
	if constraint == "" {
		return true, nil
	}
	if !strings.HasSuffix(constraint, "+") {
		return strings.Contains(output, constraint), nil
	}

	required, err := major(strings.TrimSuffix(constraint, "+"))
	if err != nil {
		return false, fmt.Errorf("invalid minimum constraint %q: %w", constraint, err)
	}
	got, err := major(actual)
	if err != nil {
		return false, fmt.Errorf("%w from %q", ErrVersionExtract, actual)
	}
	return got >= required, nil
}

// major returns the leading integer of a version token.
func major(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty version")
	}
	if v, err := semver.NewVersion(s); err == nil {
		return v.Major(), nil
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%q does not start with a number", s)
	}
	return strconv.ParseUint(s[:end], 10, 64)
}

func field(out string, i int) string {
	f := strings.Fields(out)
	if i >= len(f) {
		return ""
	}
	return f[i]
}

func firstSegment(s string) string {
	seg, _, _ := strings.Cut(s, ".")
	return seg
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// after returns the whitespace-delimited token following word.
func after(out, word string) string {
	f := strings.Fields(out)
	for i := 0; i < len(f)-1; i++ {
		if f[i] == word {
			return f[i+1]
		}
	}
	return ""
}

func kotlinVersion(out string) string {
	if v := after(out, "kotlinc-jvm"); v != "" {
		return v
	}
	return after(out, "version")
}
