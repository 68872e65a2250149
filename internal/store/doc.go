// Package store defines the persistence contracts for users, flashcard sets,
// ledgers and practice sessions.
//
// Durable data (accounts, sets, the authenticated ledger) lives behind
// UserStore and SetStore and supports transactions. Ephemeral per-session
// data (practice progress, the anonymous ledger) lives behind SessionStore,
// whose entries may expire.
package store
