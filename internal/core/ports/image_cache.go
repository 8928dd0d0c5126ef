package ports

import "context"

// ImageCache is a best-effort byte cache in front of the public image
// endpoints. A failing backend degrades to a miss; none of the operations
// surface errors to the caller.
type ImageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
	Invalidate(ctx context.Context, key string)
}
