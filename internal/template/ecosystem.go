package template

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Ecosystem identifies one of the supported generation targets.
type Ecosystem string

// Supported ecosystems.
const (
	Quarkus    Ecosystem = "quarkus"
	SpringBoot Ecosystem = "springboot"
	Angular    Ecosystem = "angular"
	React      Ecosystem = "react"
	Vue        Ecosystem = "vue"
	NodeJS     Ecosystem = "nodejs"
	DotNet     Ecosystem = "dotnet"
	Kotlin     Ecosystem = "kotlin"
)

type ecosystemInfo struct {
	label   string
	aliases []string
}

var ecosystems = map[Ecosystem]ecosystemInfo{
	Quarkus:    {"Quarkus", []string{"qs"}},
	SpringBoot: {"Spring Boot", []string{"spring", "spring-boot"}},
	Angular:    {"Angular", []string{"ng"}},
	React:      {"React", []string{"reactjs", "nextjs", "next"}},
	Vue:        {"Vue.js", []string{"vuejs"}},
	NodeJS:     {"Node.js", []string{"node", "express"}},
	DotNet:     {"ASP.NET Core", []string{"aspnet", "aspnetcore", "net"}},
	Kotlin:     {"Kotlin", []string{"ktor"}},
}

// AllEcosystems returns every supported ecosystem in a stable order.
func AllEcosystems() []Ecosystem {
	return []Ecosystem{Quarkus, SpringBoot, Angular, React, Vue, NodeJS, DotNet, Kotlin}
}

// UnknownEcosystemError is returned when an identifier matches no ecosystem.
type UnknownEcosystemError struct {
	Value string
}

func (e *UnknownEcosystemError) Error() string {
	return fmt.Sprintf("unknown ecosystem %q", e.Value)
}

// ParseEcosystem resolves an identifier or alias, ignoring case and
// surrounding whitespace.
func ParseEcosystem(s string) (Ecosystem, error) {
	x := strings.ToLower(strings.TrimSpace(s))
	for eco, info := range ecosystems {
		if x == string(eco) {
			return eco, nil
		}
		for _, alias := range info.aliases {
			if x == alias {
				return eco, nil
			}
		}
	}
	return "", &UnknownEcosystemError{Value: s}
}

// Label returns the human-readable name of the ecosystem.
func (e Ecosystem) Label() string {
	if info, ok := ecosystems[e]; ok {
		return info.label
	}
	return string(e)
}

// Aliases returns the alternate identifiers accepted for e.
func (e Ecosystem) Aliases() []string {
	return ecosystems[e].aliases
}

// UnmarshalYAML rejects unknown identifiers while the template is decoded.
// An empty value is left unset for the validator to report.
func (e *Ecosystem) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: ecosystem must be a string", value.Line)
	}
	if strings.TrimSpace(value.Value) == "" {
		*e = ""
		return nil
	}
	eco, err := ParseEcosystem(value.Value)
	if err != nil {
		return err
	}
	*e = eco
	return nil
}
