// Package orchestrator contains the core batch translation logic. It turns a
// set of input images plus translation settings into a tracked session,
// drives the per-file translation calls concurrently through the retry
// policy, persists every outcome immediately, and aggregates the session
// status once all records are terminal. This package serves as the main
// coordinator between the translation providers, the retry policy and the
// session store.
package orchestrator
