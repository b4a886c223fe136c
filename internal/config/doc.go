// Package config manages user-level settings stored at ~/.stackboot/config.yaml.
// Values can be overridden with STACKBOOT_* environment variables and, at the
// command line, by explicit flags. It covers the default output root, debug
// output, and the timeouts applied to probes, template downloads, and
// generation commands.
package config
