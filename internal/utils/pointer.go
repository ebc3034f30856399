package utils

// Ptr returns a pointer to v, for optional wire fields set from literals.
//
// Example:
//
//	cfg.Temperature = utils.Ptr(0.0001)
func Ptr[T any](v T) *T {
	return &v
}
