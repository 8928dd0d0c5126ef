package ports

import "context"

// Notifier sends transactional account email. Both operations are
// best-effort: implementations must never block the request path on delivery
// and must swallow (log) failures rather than return them.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string)
	SendCancellation(ctx context.Context, email, name string)
}
