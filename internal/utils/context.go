package utils

// contextKey is a type used for context keys to avoid conflicts with other packages' context keys.
type contextKey struct {
	name string
}

// Returns string representation of the context key.
func (c *contextKey) String() string {
	return c.name
}

// ClaimsKey stores the verified session claims on the gin context.
var ClaimsKey = &contextKey{"claims"}
var TraceIdKey = &contextKey{"traceId"}
