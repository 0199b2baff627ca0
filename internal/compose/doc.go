// Package compose resolves the declared service group of a Docker Compose
// project.
//
// composectl never interprets compose semantics; the runtime does. This
// package reads just enough of the compose files (service names and the
// top-level project name) to report what was declared and to scope
// container queries to the project's com.docker.compose.project label.
package compose
