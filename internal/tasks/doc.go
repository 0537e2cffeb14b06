// Package tasks runs bulk operations over a movie store with real-time progress reporting.
//
// # Core Operations
//
// [Engine] provides two operations:
//
//  1. [Engine.Import] : Add many titles to one user's list
//     - Verifies the user exists before any lookup
//     - Resolves titles on a bounded worker pool sharing a [rate.Limiter]
//     - Adds matches sequentially in input order
//     - Records added, missed and failed titles without aborting
//
//  2. [Engine.BulkExport] : Write every user's list to disk
//     - Reads the store once
//     - Renders one file per user on a worker pool via [formatter.WriteExport]
//     - Writes export_manifest.json summarizing the run
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default, so a slow or absent reader never blocks an operation.
package tasks
