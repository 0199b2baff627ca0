// Package lifecycle implements the container lifecycle controller.
//
// The controller drives a docker.Runtime through two fixed sequences:
//
//	StopAll:    compose down → list all containers → rm --force (if any)
//	RestartAll: compose down → compose up --build --detach → list running
//
// Steps run strictly in order; each blocks until the runtime command
// exits and the first failure aborts the rest. Nothing is retried and
// nothing is rolled back.
//
// Invocations are serialized through a Locker so two controllers working
// on the same compose project never interleave their commands.
package lifecycle
