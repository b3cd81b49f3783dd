// Package postgres implements the durable task mirror on PostgreSQL.
// The mirror is strictly best-effort: the pipeline calls it fire-and-forget
// and the in-memory store stays authoritative, so every write here is a
// last-write-wins upsert and a lost write is never an error condition for
// the caller.
package postgres
