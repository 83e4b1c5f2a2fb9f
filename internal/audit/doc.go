// Package audit implements an append-only JSONL trail of notable service
// events: session lifecycle transitions and externally ingested readings.
package audit
