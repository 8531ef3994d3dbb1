// Package stream provides lazy, pull-based operators over document sequences.
//
// Streams are lazy: no work happens until values are pulled via Collect or
// ForEach. Each stage pulls from the previous stage on demand.
//
// Sequential operators: Map, FlatMap, Filter, Tap, Concat.
// Concurrent operator: ParallelMap, which runs fn on up to n values at once
// and still yields results in input order.
//
//	src := stream.FromSlice(docs)
//	recent := stream.Filter(src, isRecent)
//	out, err := stream.Collect(ctx, recent)
package stream
