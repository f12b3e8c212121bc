// Package service is the application layer behind the MCP tools and the
// REST API.
//
// It validates input, keeps a registry of in-progress order drafts keyed by
// UUID, and maps store and provider failures onto the error kinds in
// pkg/types. Every successful mutation is written to the action log; every
// persistence or provider failure is logged and recorded as an ERROR entry.
//
// A draft is locked for the duration of each call. Overlapping calls on the
// same draft fail fast with ErrDraftBusy rather than waiting.
package service
