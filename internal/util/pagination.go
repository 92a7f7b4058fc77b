package util

const (
	DefaultPageSize   = 10
	MaxPageSize       = 100
	DefaultSearchSize = 10
	MaxSearchSize     = 50
)

// Clamp applies the default when limit is zero and the cap when it is above max.
// Negative values are rejected earlier, at the validation layer.
func Clamp(limit, def, max int) int {
	if limit == 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
