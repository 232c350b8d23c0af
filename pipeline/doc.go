// Package pipeline implements the pull-based (demand-driven) operator chain.
//
// A Pipeline is a lazy description of a linear chain. Nothing runs until an
// iterator is instantiated with Iter and pulled, either directly or via
// Collect, CollectN or ForEach. Every stage pulls from its upstream
// only when its own Next is called, so the caller controls how much of the
// source is ever visited. Stopping early (CollectN) leaves unpulled elements
// untouched.
//
// An iterator is finite and not restartable: after it reports the end of the
// stream every further Next reports the end again without touching upstream.
// Running the same Pipeline again means calling Iter again, which builds a
// fresh chain.
//
// # Stages
//
//   - Scan: cursor over a table.Sequence, one element per Next
//   - Filter / FilterGreater: skip values failing the predicate (v > threshold)
//   - Map / Scale: exactly one upstream pull per Next (v * multiplier)
//   - Tap: side effect without altering the value
//
// # Usage
//
//	src := pipeline.Scan[int](snapshot)
//	big := pipeline.FilterGreater(src, 2)
//	doubled := pipeline.Scale(big, 2)
//	out, err := pipeline.Collect(ctx, doubled) // [6 8 10] for [1..5]
package pipeline
