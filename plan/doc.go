// Package plan describes pipelines as data: an ordered list of operator
// specs plus an optional evaluation strategy.
//
// A valid pipeline starts with exactly one scan, ends with exactly one
// collect, and has only filter and map stages in between:
//
//	p := plan.New("doubled",
//		plan.Scan("main"),
//		plan.Filter(2),
//		plan.Map(2),
//		plan.Collect(),
//	)
//	if err := plan.Validate(p); err != nil {
//		// errors.ErrCodeInvalidPipeline
//	}
//
// Pipelines can also be read from YAML or JSON:
//
//	name: doubled
//	strategy: pull
//	stages:
//	  - kind: scan
//	    table: main
//	  - kind: filter
//	    threshold: 2
//	  - kind: map
//	    multiplier: 2
//	  - kind: collect
package plan
