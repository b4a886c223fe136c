// Package cli defines the Cobra command tree for the stackboot CLI. Each
// file registers one top-level command with the root command. Commands only
// parse flags, format output and prompt; the work happens in the internal
// packages.
package cli
