// Package table holds the named, ordered, immutable sequences that pipelines
// read from.
//
// A Store is filled before any pipeline referencing it is built and is only
// read during execution. Register copies the caller's slice once; Lookup
// hands out a Snapshot that borrows the stored slice without copying it.
//
//	store := table.NewStore[int]()
//	_ = store.Register("main", []int{1, 2, 3, 4, 5})
//	snap, err := store.Lookup("main")
package table
