// Package registry resolves application records by their public key.
//
// The dispatch worker looks an app up for every consumed job, so the
// package ships a read-through cache decorator alongside the two backends:
// a seeded in-memory registry for tests and single-node setups, and a
// Postgres registry for deployments where apps are managed externally.
package registry
