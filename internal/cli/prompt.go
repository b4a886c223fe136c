package cli

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/AlecAivazis/survey/v2"
	"github.com/agentx-labs/stackboot/internal/plan"
	"github.com/agentx-labs/stackboot/internal/template"
)

var (
	projectNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	packagePattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// askOne is survey.AskOne, swapped out in tests.
var askOne = survey.AskOne

// promptOverrides asks for a project name and package when at least one
// workspace leaves them undeclared and no flag supplied them.
func promptOverrides(tpl *template.Template, ov *plan.Overrides) error {
	needName, needPackage := missingIdentity(tpl)

	if needName && ov.Name == "" {
		name, err := promptString("Project name", "Used by every workspace that does not declare projectName", projectNamePattern)
		if err != nil {
			return err
		}
		ov.Name = name
	}
	if needPackage && ov.Package == "" {
		pkg, err := promptString("Base package", "Reverse-domain package, e.g. com.example.shop", packagePattern)
		if err != nil {
			return err
		}
		ov.Package = pkg
	}
	return nil
}

// missingIdentity reports whether any workspace leaves its project name or
// package undeclared.
func missingIdentity(tpl *template.Template) (name, pkg bool) {
	for _, ws := range tpl.Workspaces {
		if ws.General == nil {
			continue
		}
		if ws.General.ProjectName == nil {
			name = true
		}
		if ws.General.ProjectPackage == nil {
			pkg = true
		}
	}
	return name, pkg
}

func promptString(message, help string, pattern *regexp.Regexp) (string, error) {
	var result string
	prompt := &survey.Input{Message: message, Help: help}
	validate := func(val interface{}) error {
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", val)
		}
		if !pattern.MatchString(s) {
			return errors.New("value must match " + pattern.String())
		}
		return nil
	}
	opts := survey.WithValidator(survey.ComposeValidators(survey.Required, validate))
	if err := askOne(prompt, &result, opts); err != nil {
		return "", err
	}
	return result, nil
}
