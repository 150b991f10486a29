// Package config defines the small, JSON-serializable configuration model
// for the table pipeline's concurrency and batching.
//
// Design goals mirror the ETL pipeline this engine is descended from:
//
//  1. Stability: additive, backwards-compatible changes only.
//  2. Clarity: Go field names mirror the JSON shape.
//  3. Minimalism: standard library decoding, no config framework.
package config

import "time"

// RuntimeConfig controls the table pipeline's concurrency and batching.
type RuntimeConfig struct {
	// DegreeOfParallelism is the maximum number of row batches validated
	// concurrently. Zero means "choose a sensible default" (8).
	DegreeOfParallelism int `json:"degree_of_parallelism"`

	// RowGrouping is the number of CSV records folded into a single batch
	// before being dispatched to a worker. Zero means "choose a sensible
	// default".
	RowGrouping int `json:"row_grouping"`

	// FetchTimeout bounds a single remote metadata/CSV fetch.
	FetchTimeout time.Duration `json:"fetch_timeout"`
}

// WithDefaults returns a copy of rc with zero-valued fields replaced by
// sensible defaults.
func (rc RuntimeConfig) WithDefaults() RuntimeConfig {
	out := rc
	if out.DegreeOfParallelism <= 0 {
		out.DegreeOfParallelism = 8
	}
	if out.RowGrouping <= 0 {
		out.RowGrouping = 500
	}
	if out.FetchTimeout <= 0 {
		out.FetchTimeout = 30 * time.Second
	}
	return out
}
