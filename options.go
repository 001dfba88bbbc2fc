package fiberx

// stackConfig collects the tunables accepted by the stack allocator.
// Defaults are 16 pages of 4096 bytes. No guard page is reserved (see
// Stack: the page count is informative only).
type stackConfig struct {
	pageSize  int
	pageCount int
}

func defaultStackConfig() stackConfig {
	return stackConfig{
		pageSize:  4096,
		pageCount: 16,
	}
}

// StackOption modifies a stackConfig. No function in this package
// accepts a StackOption: the process-wide allocator used by Go and GoOn
// always runs with defaultStackConfig.
type StackOption func(*stackConfig)

// WithStackPages returns an option that sets the page count of a
// stackConfig to n. A non-positive n leaves the count unchanged.
func WithStackPages(n int) StackOption {
	return func(c *stackConfig) {
		if n > 0 {
			c.pageCount = n
		}
	}
}
