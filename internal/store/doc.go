// Package store provides SQLite-backed storage for temporal graph elements.
//
// Every element carries two time intervals in epoch milliseconds:
//   - Valid: when the fact holds in the modeled world (VAL_FROM, VAL_TO)
//   - Tx: when the fact was recorded (TX_FROM, TX_TO)
//
// # Matching
//
// Match binds each query variable to an alias of the elements table and
// filters the cross product with a predicate compiled by querysql. The
// predicate must be free of global selectors; rewrite it first.
//
// # Critical Patterns
//
// Deterministic Query Results
//   - Listings use ORDER BY id COLLATE BINARY
//   - Embeddings are ordered by the bound ids, in binding order
//
// No Interpolated Values
//   - Times, labels and property paths are always bound parameters
//   - Identifiers (variables, property keys) are validated before use
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
