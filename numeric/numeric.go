// Package numeric defines the scalar element types a pipeline can carry and
// the conversion of untyped operator parameters into them.
package numeric

import (
	"fmt"
	"math"
	"unsafe"

	apperrors "github.com/kbukum/flowkernel/errors"
)

// Number is the set of element types a pipeline can be instantiated with.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// IsFloat reports whether T is a floating point type.
func IsFloat[T Number]() bool {
	half := 0.5
	return T(half) != 0
}

// Convert turns a parameter value into T. It fails with TYPE_MISMATCH when
// v is not finite, is fractional and T is an integer type, or falls outside
// T's range.
func Convert[T Number](param string, v float64) (T, error) {
	var zero T
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return zero, apperrors.TypeMismatch(param, fmt.Sprintf("%v is not a finite number", v))
	}
	if IsFloat[T]() {
		out := T(v)
		if math.IsInf(float64(out), 0) {
			return zero, apperrors.TypeMismatch(param, fmt.Sprintf("%v overflows %T", v, zero))
		}
		return out, nil
	}
	if v != math.Trunc(v) {
		return zero, apperrors.TypeMismatch(param, fmt.Sprintf("%v is not integral", v))
	}
	out := T(v)
	if float64(out) != v {
		return zero, apperrors.TypeMismatch(param, fmt.Sprintf("%v is out of range for %T", v, zero))
	}
	return out, nil
}

// GreaterThan returns the predicate v > t for elements of type T. Any
// number is a valid bound: for integer T a fractional t is floored, a bound
// above T's range rejects everything and one below it accepts everything.
// Only NaN fails, with TYPE_MISMATCH.
func GreaterThan[T Number](param string, t float64) (func(T) bool, error) {
	if math.IsNaN(t) {
		return nil, apperrors.TypeMismatch(param, "NaN is not a number")
	}
	if IsFloat[T]() {
		bound := T(t)
		return func(v T) bool { return v > bound }, nil
	}
	lo, hi := intRange[T]()
	f := math.Floor(t)
	switch {
	case f >= hi:
		return func(T) bool { return false }, nil
	case f < lo:
		return func(T) bool { return true }, nil
	}
	bound := T(f)
	return func(v T) bool { return v > bound }, nil
}

// intRange returns the smallest value of integer type T and one past the
// largest, both exact in float64.
func intRange[T Number]() (lo, hi float64) {
	var zero, one T = 0, 1
	bits := int(unsafe.Sizeof(zero)) * 8
	if zero-one < zero {
		return -math.Ldexp(1, bits-1), math.Ldexp(1, bits-1)
	}
	return 0, math.Ldexp(1, bits)
}
