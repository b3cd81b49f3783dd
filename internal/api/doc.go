// Package api contains the HTTP handlers for the StyleForge API: task
// creation and lifecycle endpoints, the style template catalog, and the
// shared response/error plumbing. Handlers translate between the wire
// format and the task pipeline; they hold no business logic of their own.
package api
