// Package orchestrator runs a validated template workspace by workspace:
// resolve the plan, gate on "pre" dependencies, generate, install "post"
// dependencies, then apply changesets. It alone decides which failures end
// the run, and it always hands back a Report, even for an aborted run.
package orchestrator
