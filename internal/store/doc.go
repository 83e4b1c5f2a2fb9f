// Package store implements the bounded in-memory telemetry history.
//
// The store is the single shared mutable resource in the service: the signal
// generator writes readings into it and every streaming session and HTTP
// handler reads from it. One RWMutex guards the history ring, the ingest
// counter, and the client registry; writers hold it for a single append+evict
// and readers for a single query.
package store
