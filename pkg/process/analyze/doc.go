// Package analyze implements the read-only analyses over a process graph:
// exhaustive simple-path enumeration, convergence (bottleneck) ranking,
// weighted critical-path selection, summary statistics, and parallel branch
// detection.
//
// Every function takes an immutable [process.Graph] and returns a fresh
// result; nothing is cached or mutated, so concurrent calls against the
// same graph are safe. Errors are scoped to the single query that raised
// them and never invalidate the graph.
package analyze
