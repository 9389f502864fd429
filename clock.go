package recur

import "context"

// Clock reads the host chain's monotonically increasing height counter.
// Recur timestamps every event in heights and never consults wall time.
type Clock interface {
	Height(ctx context.Context) (uint64, error)
}

// HeightFunc is an adapter to use a plain function as a Clock.
type HeightFunc func(ctx context.Context) (uint64, error)

// Height implements Clock.
func (f HeightFunc) Height(ctx context.Context) (uint64, error) {
	return f(ctx)
}
