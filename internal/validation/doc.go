// Package validation enforces field ranges on externally submitted sensor
// inputs and clamps pagination parameters. The core store accepts any
// well-formed reading; rejection of out-of-range values happens here, at the
// ingestion boundary.
package validation
