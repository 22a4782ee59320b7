// Package services implements the core pipeline orchestration.
//
// The Processor drives one page at a time through fetch, parse, change
// detection, optional AI enrichment, index submission, and cache
// commit. Multi-page invocations fan out over a bounded worker pool;
// per-page failures are collected into the run report and never abort
// the run.
package services
