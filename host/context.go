package host

import "context"

type bridgeKey struct{}

// WithBridge returns a context that routes screeps host calls to b. The tick
// driver attaches it to every guest call.
func WithBridge(ctx context.Context, b *Bridge) context.Context {
	return context.WithValue(ctx, bridgeKey{}, b)
}

// FromContext returns the bridge attached to ctx, or nil.
func FromContext(ctx context.Context) *Bridge {
	b, _ := ctx.Value(bridgeKey{}).(*Bridge)
	return b
}
