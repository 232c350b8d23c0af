// Package engine turns a plan.Pipeline into an executable operator chain and
// runs it.
//
// Build validates the description, resolves the scanned table through a
// table.Store, converts the operator parameters to the element type and
// wires the chain for the chosen strategy:
//
//	store := table.NewStore[int]()
//	_ = store.Register("main", []int{1, 2, 3, 4, 5})
//
//	eng := engine.New(store, engine.WithLogger(log))
//	out, err := eng.Run(ctx, plan.New("doubled",
//		plan.Scan("main"), plan.Filter(2), plan.Map(2), plan.Collect(),
//	), plan.Pull)
//	// out == []int{6, 8, 10}
//
// Pull and push produce the same output for every pipeline. With a limit,
// pull stops requesting values from the chain and push stops its scan once
// the collector is full.
package engine
