// Package run carries the per-run state of one analysis through the
// pipeline: notices surfaced to the user and the balance the agent fetched.
package run

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"stx-trader/internal/domain"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Context is created at the start of a run and discarded with its report.
// Methods are safe on a nil receiver so fetchers work outside a run.
type Context struct {
	ID        string
	Address   string
	StartedAt time.Time

	mu      sync.Mutex
	notices []domain.Notice
	balance *domain.WalletBalance
}

var newID = func() string { return uuid.NewString() }

var now = time.Now

// New starts a run for address. The address must not be blank.
func New(address string) (*Context, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.ErrEmptyAddress
	}
	return &Context{
		ID:        newID(),
		Address:   address,
		StartedAt: now(),
	}, nil
}

func WithContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the run attached to ctx, or nil.
func FromContext(ctx context.Context) *Context {
	rc, _ := ctx.Value(ctxKey{}).(*Context)
	return rc
}

// Notify records a user-visible message.
func (rc *Context) Notify(source, format string, args ...any) {
	if rc == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.notices = append(rc.notices, domain.Notice{
		Source:  source,
		Message: fmt.Sprintf(format, args...),
		At:      now(),
	})
}

func (rc *Context) Notices() []domain.Notice {
	if rc == nil {
		return nil
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]domain.Notice, len(rc.notices))
	copy(out, rc.notices)
	return out
}

// SetBalance stores the latest balance fetched during the run.
func (rc *Context) SetBalance(b domain.WalletBalance) {
	if rc == nil {
		return
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.balance = &b
}

// Balance returns the fetched balance, or the empty balance if the tool
// never succeeded.
func (rc *Context) Balance() domain.WalletBalance {
	if rc == nil {
		return domain.WalletBalance{}
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.balance == nil {
		return domain.WalletBalance{}
	}
	return *rc.balance
}
