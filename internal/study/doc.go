// Package study implements the in-memory study session engine: the due-set
// selector that narrows the card collection, and the session state machine
// that drives traversal, flipping, shuffling, and per-card mutations.
//
// Sessions are ephemeral. Their in-memory state is the source of truth
// while studying; card mutations are mirrored out through the CardMutator
// port as best-effort writes.
package study
