package testutil

// FixedIdentity returns the same replacement value every time.
//
// This enables deterministic test execution: the happy-path case that
// normally receives a freshly generated username gets a known value
// instead, so assertions and recorded traffic line up across runs.
//
// Thread-safety: FixedIdentity is stateless and safe for concurrent use.
type FixedIdentity struct {
	value string
}

// NewFixedIdentity creates a generator that always returns value.
//
// If value is empty, Fresh returns "user-fixed".
func NewFixedIdentity(value string) *FixedIdentity {
	if value == "" {
		value = "user-fixed"
	}
	return &FixedIdentity{value: value}
}

// Fresh returns the fixed value, ignoring the base.
//
// Implements flows.IdentityGenerator.
func (g *FixedIdentity) Fresh(string) string {
	return g.value
}
