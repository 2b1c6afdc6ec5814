// Package model defines the data structures shared by the privacy audit.
//
// This package contains the following main types:
//   - Category and DetectionTask: the six audit dimensions and their per-run task state
//   - IPResult, WebRTCResult, DNSResult, IPv6Result, FingerprintResult, BrowserResult:
//     raw probe output, one per category
//   - CategoryScore, Breakdown, SecurityScore: analyzer and aggregator output
//   - DetectionResults: the immutable snapshot produced by a completed run
//   - Notification: the summary event emitted at the end of a run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The analyzer, orchestrator, probe, database and report packages
// all consume these types.
//
// The models are serializable to JSON for report output and history storage.
package model
