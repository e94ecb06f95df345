// Package pipeline runs a conversion request over a set of files.
//
// Run validates the request, builds one rule set and then drives every file
// through detect, analyze, score and convert on a bounded worker pool. The
// per-file results are aggregated into a Report once every dispatched task
// has finished. Only a bad request (ConfigurationError) or a broken task
// (AggregationError) fails the run; everything else is an issue in the report.
package pipeline
