// Package scoring folds the six category scores into one composite
// SecurityScore and risk level.
package scoring
