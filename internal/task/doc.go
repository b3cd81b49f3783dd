// Package task implements the asynchronous image-generation pipeline: a
// per-task state machine that accepts creation requests, drives each task
// through staged processing, invokes the external provider, and falls back
// to a deterministic simulated result when the provider is degraded.
//
// Creation is synchronous, execution is not: CreateTask returns the pending
// task immediately and processing runs as a detached goroutine. State lives
// in the in-memory task store; the durable mirror is written fire-and-forget
// and the pipeline functions correctly with persistence fully absent.
package task
