// Package fn holds small generic helpers.
package fn

// T is short for ternary.
func T[V any](condition bool, trueVal, falseVal V) V {
	if condition {
		return trueVal
	}
	return falseVal
}

// Or returns v, or fallback when v is the zero value.
func Or[V comparable](v, fallback V) V {
	var zero V
	if v == zero {
		return fallback
	}
	return v
}
