package deps

import (
	"context"

	"github.com/agentx-labs/stackboot/internal/ctxlog"
	"github.com/agentx-labs/stackboot/internal/template"
)

// InstallStatus classifies an install attempt.
type InstallStatus string

const (
	InstallInstalled      InstallStatus = "installed"
	InstallAlreadyPresent InstallStatus = "already-present"
	InstallSkipped        InstallStatus = "skipped"
	InstallFailed         InstallStatus = "failed"
)

// InstallResult is the outcome of installing one dependency.
type InstallResult struct {
	Dependency template.Dependency
	Status     InstallStatus
	Detail     string
	// Hints suggest how to fix a failed or skipped install by hand.
	Hints []string
}

// Installer adds one dependency to a generated project.
type Installer interface {
	Install(ctx context.Context, dep template.Dependency) InstallResult
}

// Install attempts every dependency regardless of earlier outcomes.
func Install(ctx context.Context, deps []template.Dependency, installer Installer) []InstallResult {
	log := ctxlog.FromContext(ctx)
	results := make([]InstallResult, 0, len(deps))
	for _, dep := range deps {
		var res InstallResult
		if installer == nil {
			res = InstallResult{Dependency: dep, Status: InstallSkipped, Detail: "no installer for this ecosystem"}
		} else {
			res = installer.Install(ctx, dep)
			res.Dependency = dep
		}
		log.Debug("dependency installed", "name", dep.Name, "status", res.Status, "detail", res.Detail)
		results = append(results, res)
	}
	return results
}
