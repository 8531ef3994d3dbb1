// Package dag executes a graph of named nodes in dependency order.
//
// Nodes of the same dependency level run concurrently, bounded by
// Engine.MaxParallel. The first node failure cancels the rest of the run and
// is returned to the caller; a canceled parent context surfaces as a CANCELED
// AppError. Graph problems (cycles, edges to unknown nodes) are reported as
// CONFIGURATION_ERROR before any node runs.
//
// Two entry points share the same graph:
//   - ExecuteBatch: runs every node
//   - ExecuteSelected: runs only nodes accepted by a NodeFilter, marking the rest skipped
package dag
