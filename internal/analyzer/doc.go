// Package analyzer turns raw probe output into per-category scores.
//
// Every analyzer is a pure function: the same input always produces the same
// CategoryScore, there is no I/O, and no state is shared between calls.
// Scoring starts from a baseline of 100, applies additive deductions and
// bonuses, and clamps the result into [0, 100].
//
// Missing optional data (for example an unknown IP geolocation) is treated
// as "no information": the dependent rule is skipped rather than failing.
package analyzer
