package types

// Ptr returns a pointer to v. Options use pointers for fields whose zero
// value is meaningful, e.g. a priority of 0 versus the default of 0.5.
func Ptr[T any](v T) *T {
	return &v
}

// ValueOr returns *p, or def when p is nil.
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
