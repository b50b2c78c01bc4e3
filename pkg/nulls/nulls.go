// Package nulls holds nil-pointer helpers for plumbing optional values.
// Nothing here panics on nil input.
package nulls

// Ptr returns a pointer to v. Handy for literals.
func Ptr[T any](v T) *T {
	return &v
}

// Coalesce returns the first non-nil pointer, or nil when all are nil.
func Coalesce[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// OrDefault dereferences p, substituting def when p is nil.
func OrDefault[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// NullIf returns nil when v equals match, otherwise a pointer to v.
func NullIf[T comparable](v, match T) *T {
	if v == match {
		return nil
	}
	return &v
}
