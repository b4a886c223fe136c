// Package engine holds one generation strategy per supported ecosystem and
// the registry the orchestrator dispatches through.
//
// Engines shell out to the ecosystem's own scaffolding tool (mvn, npx,
// dotnet, gradle) or, for Spring Boot, download a starter archive. Each
// engine also supplies the Installer used for its "post" dependencies.
package engine
