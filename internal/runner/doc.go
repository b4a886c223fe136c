// Package runner executes external tools on behalf of the generation
// pipeline. A nonzero exit status is returned as data in Result; only a
// failure to start the process is an error. Every invocation runs under an
// explicit timeout and is never retried.
package runner
