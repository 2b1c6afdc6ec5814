// Package orchestrator runs the six privacy probes concurrently and folds
// their output into a single DetectionResults snapshot.
//
// The orchestrator is a single-active-run state machine:
//
//	idle -> detecting -> completed | failed -> idle (Reset)
//
// Every probe is failure-isolated. A probe that returns an error or panics
// marks its task failed and its category receives a deterministic fallback
// value, so analysis always sees a complete input. Errors in the
// orchestrator's own logic (analysis or aggregation) are fatal to the run
// and surface as the failed phase.
//
// Each run is tagged with an identifier. Reset abandons the current run
// without cancelling probes that are still in flight; when those probes
// eventually settle, their results carry a stale identifier and are dropped.
//
// Side effects are explicit output ports: a HistorySink receives the
// snapshot, a Notifier receives one summary Notification, and subscribers
// receive State snapshots as the run progresses.
package orchestrator
