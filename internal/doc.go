// Package internal documents the guestlist server internals.
//
// Packages under internal/ split by responsibility:
//   - api: HTTP routing, handlers, middleware, and problem responses
//   - domain: the registration engine and its models
//   - storage: Postgres and in-memory backends behind one interface
//   - config, metrics, telemetry: shared infrastructure
//
// Nothing here is importable from outside the module.
package internal
