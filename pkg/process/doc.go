// Package process defines the in-memory model for one workflow definition:
// typed nodes connected by directed sequence edges, possibly containing
// cycles (rework loops are expected domain data).
//
// A [Graph] is built once with [Build], which validates node uniqueness and
// edge endpoints and eagerly indexes adjacency in both directions. After
// construction the graph is immutable; every analysis consumes it read-only,
// so one instance can serve concurrent queries without synchronization.
//
// The companion packages build on this model:
//   - process/layout computes deterministic 2-D positions
//   - process/analyze enumerates paths, convergence points, and critical paths
package process
