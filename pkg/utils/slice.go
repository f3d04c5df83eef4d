package utils

// Map slice to other slice, with mapper.
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for i, v := range sli {
		ret[i] = mapper(v)
	}
	return ret
}

// Filter slice with predicator.
func Filter[T any](vs []T, predicator func(T) bool) []T {
	ret := make([]T, 0, len(vs))
	for _, v := range vs {
		if predicator(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

// First returns the first element satisfying predicator.
//
// When no element satisfies it, returns (zero-value, false).
func First[T any](sli []T, predicator func(T) bool) (T, bool) {
	for _, v := range sli {
		if predicator(v) {
			return v, true
		}
	}
	return *new(T), false
}

// ApplyAll applies all modifiers to value, in order.
func ApplyAll[T any](value *T, modifier ...func(*T) *T) *T {
	for _, m := range modifier {
		value = m(value)
	}
	return value
}
