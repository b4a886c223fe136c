// Package deps verifies toolchain prerequisites before generation and drives
// post-generation installs.
//
// Check probes each "pre" dependency with `<name> --version`, extracts a
// version token from the output and evaluates the declared constraint. A
// constraint suffixed "+" is a minimum on the leading (major) number; any
// other constraint must occur literally somewhere in the probe output.
// Install hands every "post" dependency to an ecosystem-specific Installer
// and only collects what happened.
package deps
