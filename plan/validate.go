package plan

import (
	"fmt"

	apperrors "github.com/kbukum/flowkernel/errors"
	"github.com/kbukum/flowkernel/validation"
)

// Validate checks the shape of p. Every violation is reported as
// INVALID_PIPELINE; whether the scanned table exists is checked at build
// time against a store.
func Validate(p Pipeline) error {
	if appErr := validation.ValidateWith(p, apperrors.InvalidPipeline); appErr != nil {
		return appErr
	}

	n := len(p.Stages)
	if n < 2 {
		return apperrors.InvalidPipeline(
			fmt.Sprintf("a pipeline needs at least a scan and a collect stage, got %d stage(s)", n))
	}

	v := validation.New()
	for i, s := range p.Stages {
		field := fmt.Sprintf("stages[%d]", i)
		switch {
		case i == 0:
			validation.OneOf(v, field+".kind", s.Kind, KindScan)
		case i == n-1:
			validation.OneOf(v, field+".kind", s.Kind, KindCollect)
		default:
			validation.OneOf(v, field+".kind", s.Kind, KindFilter, KindMap)
		}
		checkParams(v, field, s)
	}
	if appErr := v.ValidateWith(apperrors.InvalidPipeline); appErr != nil {
		return appErr
	}
	return nil
}

// stageParams lists the parameters each kind takes.
var stageParams = map[Kind]struct{ table, threshold, multiplier bool }{
	KindScan:    {table: true},
	KindFilter:  {threshold: true},
	KindMap:     {multiplier: true},
	KindCollect: {},
}

func checkParams(v *validation.Validator, field string, s OperatorSpec) {
	want := stageParams[s.Kind]
	v.Param(field+".table", s.Table != "", want.table, s.Kind)
	v.Param(field+".threshold", s.Threshold != nil, want.threshold, s.Kind)
	v.Param(field+".multiplier", s.Multiplier != nil, want.multiplier, s.Kind)
}
