package mail

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-manager/internal/api/metrics"
)

const sendTimeout = 10 * time.Second

// Notifier implements ports.Notifier: each send runs in its own goroutine,
// detached from the request context, and failures are logged rather than
// returned. Wait drains in-flight sends on shutdown.
type Notifier struct {
	mailer Mailer
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewNotifier(mailer Mailer, logger zerolog.Logger) *Notifier {
	return &Notifier{mailer: mailer, logger: logger}
}

func (n *Notifier) SendWelcome(_ context.Context, email, name string) {
	n.send("welcome", email,
		"Thank you for joining us!",
		"Welcome to our app, "+name)
}

func (n *Notifier) SendCancellation(_ context.Context, email, name string) {
	n.send("cancellation", email,
		"Sorry to see you go!",
		"Dear "+name+", send us your feedback, we use it to improve our services.")
}

func (n *Notifier) send(kind, email, subject, body string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		// A fresh context: the request that triggered the email has
		// usually completed by the time delivery finishes.
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.mailer.Send(ctx, email, subject, body); err != nil {
			metrics.EmailsTotal.WithLabelValues(kind, "error").Inc()
			n.logger.Warn().Err(err).Str("kind", kind).Str("email", email).Msg("email send failed")
			return
		}
		metrics.EmailsTotal.WithLabelValues(kind, "sent").Inc()
		n.logger.Info().Str("kind", kind).Str("email", email).Msg("email sent")
	}()
}

// Wait blocks until all in-flight sends have finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
