// Package template models stackboot templates and turns raw template sources
// into validated Template values.
//
// A template is a list of workspaces. Each workspace names one target
// ecosystem, its prerequisite ("pre") and post-generation ("post")
// dependencies, and an optional structure of file-tree changesets. Templates
// are written in YAML (JSON is accepted as a YAML subset) or HCL, and are read
// from a local file or fetched once from an http(s) URL.
package template
