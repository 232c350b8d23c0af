// Package push implements the push-based (data-driven) operator chain.
//
// Every stage holds its downstream Stage and exposes a single Push method.
// Chains are composed once, sink first:
//
//	sink := push.NewCollector[int](0)
//	scaled := push.Scale[int](2, sink)
//	filtered := push.FilterGreater[int](2, scaled)
//	scan := push.NewScan[int](snapshot, filtered)
//	err := scan.Execute(ctx) // sink.Values() == [6 8 10] for [1..5]
//
// Execute is the only entry point. Each element travels the whole chain as
// one nested synchronous call that unwinds before the next element starts,
// so call depth follows chain length and not table size.
//
// Downstream has no way to pause the producer. The only early exit is
// ErrStop: a stage returning it makes Scan stop cleanly after the current
// element. Without it the whole table is always consumed.
package push
