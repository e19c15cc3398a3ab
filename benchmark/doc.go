// Package benchmark times a document-partitioning function over a fixed set
// of representative files and records per-file averages plus a wall-clock
// total as JSON.
//
// The partitioning function itself is an external collaborator supplied by
// the caller as a PartitionFunc; this package only drives timing, skipping,
// warmup, and result persistence. PDFs and images run with the hi_res
// strategy, everything else with fast, matching the conventions of the
// surrounding performance tooling.
package benchmark
