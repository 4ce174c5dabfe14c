package errtrack

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// Tracker reports errors to an external service.
type Tracker interface {
	CaptureError(ctx context.Context, err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// New returns a Sentry tracker when dsn is set and a no-op tracker otherwise.
func New(dsn, environment string) (Tracker, error) {
	if dsn == "" {
		return Noop{}, nil
	}
	return NewSentry(dsn, environment)
}

// Sentry implements Tracker via the Sentry SDK.
type Sentry struct {
	hub *sentry.Hub
}

var initSentry = sentry.Init

func NewSentry(dsn, environment string) (*Sentry, error) {
	if err := initSentry(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return nil, err
	}
	return &Sentry{hub: sentry.CurrentHub()}, nil
}

func (s *Sentry) CaptureError(ctx context.Context, err error, tags map[string]string) {
	hub := s.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
	})
	hub.CaptureException(err)
}

func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

// Noop discards everything.
type Noop struct{}

func (Noop) CaptureError(context.Context, error, map[string]string) {}
func (Noop) Flush(time.Duration) bool                              { return true }
