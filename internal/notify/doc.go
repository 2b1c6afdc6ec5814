// Package notify prints run feedback to the console: the summary
// notification at the end of a detection run and a progress line for
// every state change while probes are running.
package notify
