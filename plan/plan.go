package plan

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/kbukum/flowkernel/errors"
)

// Kind names an operator.
type Kind string

const (
	KindScan    Kind = "scan"
	KindFilter  Kind = "filter"
	KindMap     Kind = "map"
	KindCollect Kind = "collect"
)

// Strategy selects how a pipeline is evaluated.
type Strategy string

const (
	// Pull evaluates on demand: the driver asks the outermost stage for the
	// next value.
	Pull Strategy = "pull"
	// Push evaluates from the source: Scan drives every element through
	// the chain.
	Push Strategy = "push"
)

// Strategies lists the supported strategies.
var Strategies = []Strategy{Pull, Push}

// ParseStrategy converts s into a Strategy. The empty string yields def.
func ParseStrategy(s string, def Strategy) (Strategy, error) {
	st := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return def, nil
	}
	if slices.Contains(Strategies, st) {
		return st, nil
	}
	return "", apperrors.InvalidInput("strategy", fmt.Sprintf("unknown strategy %q (want one of %v)", s, Strategies))
}

// OperatorSpec describes one stage. Parameters are pointers so an absent
// value is distinguishable from zero.
type OperatorSpec struct {
	Kind       Kind     `json:"kind" yaml:"kind" validate:"required,oneof=scan filter map collect"`
	Table      string   `json:"table,omitempty" yaml:"table,omitempty" validate:"omitempty,max=128"`
	Threshold  *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Multiplier *float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
}

// Scan reads every element of the named table in order.
func Scan(table string) OperatorSpec {
	return OperatorSpec{Kind: KindScan, Table: table}
}

// Filter keeps values strictly greater than threshold.
func Filter(threshold float64) OperatorSpec {
	return OperatorSpec{Kind: KindFilter, Threshold: &threshold}
}

// Map multiplies every value by multiplier.
func Map(multiplier float64) OperatorSpec {
	return OperatorSpec{Kind: KindMap, Multiplier: &multiplier}
}

// Collect gathers the output.
func Collect() OperatorSpec {
	return OperatorSpec{Kind: KindCollect}
}

// String renders the stage as e.g. "filter(>2)".
func (o OperatorSpec) String() string {
	switch o.Kind {
	case KindScan:
		return fmt.Sprintf("scan(%s)", o.Table)
	case KindFilter:
		return "filter(>" + formatParam(o.Threshold) + ")"
	case KindMap:
		return "map(*" + formatParam(o.Multiplier) + ")"
	case KindCollect:
		return "collect"
	}
	return string(o.Kind)
}

func formatParam(v *float64) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// Pipeline is an ordered chain of operator specs.
type Pipeline struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty" validate:"omitempty,max=128"`
	Strategy Strategy       `json:"strategy,omitempty" yaml:"strategy,omitempty" validate:"omitempty,oneof=pull push"`
	Stages   []OperatorSpec `json:"stages" yaml:"stages" validate:"dive"`
}

// New builds a Pipeline from stages.
func New(name string, stages ...OperatorSpec) Pipeline {
	return Pipeline{Name: name, Stages: stages}
}

// Table returns the table read by the leading scan, or "" if the first
// stage is not a scan.
func (p Pipeline) Table() string {
	if len(p.Stages) == 0 || p.Stages[0].Kind != KindScan {
		return ""
	}
	return p.Stages[0].Table
}

// String renders the chain, e.g. "scan(main) -> filter(>2) -> collect".
func (p Pipeline) String() string {
	parts := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}
