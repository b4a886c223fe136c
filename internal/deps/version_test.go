package deps

import (
	"errors"
	"testing"
)

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"java", "openjdk 21.0.2 2024-01-16\nOpenJDK Runtime Environment (build 21.0.2+13)\n", "21"},
		{"java", `java 17.0.9 2023-10-17 LTS`, "17"},
		{"mvn", "Apache Maven 3.9.6 (bc0240f3c744dd6b6ec2920b3cd08dcc295161ae)\nMaven home: /opt/maven\n", "3.9.6"},
		{"node", "v20.11.0\n", "20.11.0"},
		{"gradle", "\n------------------------------------------------------------\nGradle 8.5\n------------------------------------------------------------\n", "8.5"},
		{"kotlinc", "info: kotlinc-jvm 1.9.22 (JRE 21.0.2+13)\n", "1.9.22"},
		{"kotlin", "Kotlin version 2.0.0-release-341 (JRE 21.0.2+13)\n", "2.0.0-release-341"},
		{"dotnet", "8.0.101\n", "8.0.101"},
		{"npm", "10.2.4\n", "10"},
		{"git", "git version 2.43.0\n", "git version 2"},
		{"java", "", ""},
	}
	for _, tt := range tests {
		if got := ExtractVersion(tt.name, tt.output); got != tt.want {
			t.Errorf("ExtractVersion(%q, %q) = %q, want %q", tt.name, tt.output, got, tt.want)
		}
	}
}

func TestSatisfies_Minimum(t *testing.T) {
	tests := []struct {
		constraint string
		actual     string
		want       bool
	}{
		{"17+", "21", true},
		{"17+", "17", true},
		{"17+", "8", false},
		{"10+", "9", false},
		{"3+", "3.9.6", true},
		{"20+", "20.11.0", true},
		{"3.9+", "4.0.0", true},
		{"21+", "1.9.22", false},
	}
	for _, tt := range tests {
		got, err := Satisfies(tt.constraint, tt.actual, "")
		if err != nil {
			t.Errorf("Satisfies(%q, %q) error: %v", tt.constraint, tt.actual, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Satisfies(%q, %q) = %v, want %v", tt.constraint, tt.actual, got, tt.want)
		}
	}
}

func TestSatisfies_MinimumExtractFailure(t *testing.T) {
	for _, actual := range []string{"", "git version 2", "unknown"} {
		_, err := Satisfies("2+", actual, "")
		if !errors.Is(err, ErrVersionExtract) {
			t.Errorf("Satisfies(2+, %q) error = %v, want ErrVersionExtract", actual, err)
		}
	}
}

func TestSatisfies_InvalidMinimum(t *testing.T) {
	_, err := Satisfies("lts+", "20", "")
	if err == nil || errors.Is(err, ErrVersionExtract) {
		t.Errorf("expected invalid-constraint error, got %v", err)
	}
}

func TestSatisfies_ExactIsSubstring(t *testing.T) {
	tests := []struct {
		constraint string
		output     string
		want       bool
	}{
		{"3.4.1", "Spring Boot 3.4.1 (build 42)", true},
		{"3.4.1", "Spring Boot 3.4.2", false},
		// Loose on purpose: a short constraint matches inside a longer version.
		{"21", "Gradle 3.21.0", true},
		{"", "anything", true},
	}
	for _, tt := range tests {
		got, err := Satisfies(tt.constraint, "ignored", tt.output)
		if err != nil {
			t.Fatalf("Satisfies() error: %v", err)
		}
		if got != tt.want {
			t.Errorf("Satisfies(%q, output %q) = %v, want %v", tt.constraint, tt.output, got, tt.want)
		}
	}
}
