// Package store defines the persistence boundaries of the task pipeline:
// the authoritative in-memory task store and the best-effort durable
// mirror. Implementations live here (memory) and in platform/postgres.
package store
