// Package descriptor injects library dependencies into generated build
// descriptors (pom.xml, build.gradle, build.gradle.kts).
//
// Patching is anchored text insertion rather than a parse and re-serialize
// round trip, so formatting and comments elsewhere in the file survive. Each
// patcher locates the dependency block the generator wrote, skips artifacts
// that are already declared, and inserts the new entry with the indentation
// of its surroundings. Annotation processors (lombok, mapstruct-processor,
// ...) are additionally registered with the compiler in a separate pass.
package descriptor
