// Package cache implements an optional Redis mirror of recorded readings.
//
// The mirror is a best-effort tee on the recording path for external
// consumers (dashboards, ad-hoc inspection). Keys expire with the retention
// window, so it never becomes durable storage; the in-memory store remains
// the source of truth.
package cache
