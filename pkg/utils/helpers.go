// Package utils provides small generic helpers shared across the pipeline.
package utils

// Map applies f to every item of s.
func Map[A any, B any](s []A, f func(A, uint64) B) []B {
	out := make([]B, 0, len(s))
	for i, v := range s {
		out = append(out, f(v, uint64(i)))
	}
	return out
}

// Filter keeps the items of s for which f returns true.
func Filter[A any](s []A, f func(A) bool) []A {
	out := make([]A, 0, len(s))
	for _, v := range s {
		if f(v) {
			out = append(out, v)
		}
	}
	return out
}

// Flatten concatenates nested slices in order.
func Flatten[A any](s [][]A) []A {
	size := 0
	for _, inner := range s {
		size += len(inner)
	}
	out := make([]A, 0, size)
	for _, inner := range s {
		out = append(out, inner...)
	}
	return out
}

// CleanNested drops nil values from maps, recursively through maps and slices.
func CleanNested(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = CleanNested(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, val := range t {
			if val == nil {
				continue
			}
			out = append(out, CleanNested(val))
		}
		return out
	default:
		return v
	}
}
