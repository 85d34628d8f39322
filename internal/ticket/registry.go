package ticket

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/khanghh/casoauth/internal/store"
	"github.com/khanghh/casoauth/params"
)

// Registry stores session tickets and deletes them by id. Deleting a ticket
// walks the recorded child ids first, so revoking a granting ticket takes
// every ticket derived from it down with it.
type Registry struct {
	tickets store.Store[Ticket]
	childMu sync.Mutex // serializes child list appends
}

func (r *Registry) AddTicket(ctx context.Context, t *Ticket, expiresIn time.Duration) error {
	return r.tickets.Set(ctx, t.ID, *t, expiresIn)
}

func (r *Registry) GetTicket(ctx context.Context, ticketID string) (*Ticket, error) {
	t, err := r.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, ErrTicketNotFound
	}
	return &t, nil
}

// DeleteTicket removes a ticket and everything derived from it. It is
// idempotent: deleting an absent ticket reports false and does nothing.
func (r *Registry) DeleteTicket(ctx context.Context, ticketID string) bool {
	t, err := r.tickets.Get(ctx, ticketID)
	if err != nil {
		return false
	}
	for _, childID := range t.Children() {
		r.DeleteTicket(ctx, childID)
	}
	return r.tickets.Delete(ctx, ticketID) == nil
}

// addChild records a derived ticket on its parent. The append re-reads the
// stored child list under the lock; the caller's snapshot may be stale when
// several tickets are granted from the same parent concurrently.
func (r *Registry) addChild(ctx context.Context, parent *Ticket, childID string) error {
	r.childMu.Lock()
	defer r.childMu.Unlock()
	current, err := r.tickets.Get(ctx, parent.ID)
	if err != nil {
		return ErrTicketNotFound
	}
	parent.ChildIDs = strings.TrimSpace(current.ChildIDs + " " + childID)
	return r.tickets.SetAttr(ctx, parent.ID, "child_ids", parent.ChildIDs)
}

func NewRegistry(storage store.Storage) *Registry {
	return &Registry{
		tickets: store.New[Ticket](storage, params.TicketKeyPrefix),
	}
}
