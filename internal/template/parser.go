package template

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Format is the syntax of a template document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// DetectFormat picks the syntax from the source's extension. URLs are judged
// by their path, ignoring query and fragment.
func DetectFormat(source string) Format {
	p := source
	if IsRemote(source) {
		if u, err := url.Parse(source); err == nil {
			p = u.Path
		}
	}
	if strings.EqualFold(path.Ext(p), ".hcl") {
		return FormatHCL
	}
	return FormatYAML
}

// Parse decodes a template document. name is used in error messages only.
func Parse(data []byte, format Format, name string) (*Template, error) {
	switch format {
	case FormatHCL:
		return parseHCL(data, name)
	case FormatYAML, "":
		return parseYAML(data, name)
	default:
		return nil, &ParseError{Source: name, Cause: fmt.Errorf("unsupported format %q", format)}
	}
}

func parseYAML(data []byte, name string) (*Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Template
	if err := dec.Decode(&t); err != nil {
		return nil, &ParseError{Source: name, Cause: err}
	}
	return &t, nil
}
