package contextkey

import "context"

// key is a private type to avoid context key collisions across packages.
type key string

const (
	BootID key = "boot_id"
	Step   key = "step"
)

// WithBootID attaches the per-boot correlation id to the context.
func WithBootID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, BootID, id)
}

// WithStep attaches the current bootstrap step name to the context.
func WithStep(ctx context.Context, step string) context.Context {
	return context.WithValue(ctx, Step, step)
}
