// Package state tracks per-user conversation state for multi-step bot flows.
// Each user holds at most one session, so steps within a conversation are
// strictly sequential; sessions expire after a TTL via the Janitor.
package state
