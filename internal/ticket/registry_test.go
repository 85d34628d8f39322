package ticket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/khanghh/casoauth/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(store.NewMemoryStorage())
}

func TestRegistryAddGetDelete(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry()

	tgt := &Ticket{
		ID:          NewTicketID(TicketGrantingTicketPrefix),
		PrincipalID: "alice",
		CreateTime:  time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, registry.AddTicket(ctx, tgt, time.Hour))

	got, err := registry.GetTicket(ctx, tgt.ID)
	require.NoError(t, err)
	assert.Equal(t, tgt.ID, got.ID)
	assert.Equal(t, "alice", got.PrincipalID)
	assert.False(t, got.IsServiceTicket())

	assert.True(t, registry.DeleteTicket(ctx, tgt.ID))
	_, err = registry.GetTicket(ctx, tgt.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestRegistryGetTicketNotFound(t *testing.T) {
	registry := newTestRegistry()
	_, err := registry.GetTicket(context.Background(), "TGT-unknown")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestRegistryDeleteTicketIdempotent(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry()

	assert.False(t, registry.DeleteTicket(ctx, "TGT-unknown"))

	tgt := &Ticket{ID: NewTicketID(TicketGrantingTicketPrefix), PrincipalID: "alice", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, registry.AddTicket(ctx, tgt, time.Hour))
	assert.True(t, registry.DeleteTicket(ctx, tgt.ID))
	assert.False(t, registry.DeleteTicket(ctx, tgt.ID))
}

func TestRegistryDeleteCascades(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry()
	authority := NewAuthority(registry, nil)

	tgt, err := authority.CreateTicketGrantingTicket(ctx, Credential{PrincipalID: "alice"})
	require.NoError(t, err)

	st1, err := authority.GrantServiceTicket(ctx, tgt.ID, "https://app.example.org/callback")
	require.NoError(t, err)
	st2, err := authority.GrantServiceTicket(ctx, tgt.ID, "https://app.example.org/callback")
	require.NoError(t, err)

	parent, err := registry.GetTicket(ctx, tgt.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{st1.ID, st2.ID}, parent.Children())

	// deleting the granting ticket takes every derived ticket with it
	assert.True(t, registry.DeleteTicket(ctx, tgt.ID))
	for _, id := range []string{tgt.ID, st1.ID, st2.ID} {
		_, err := registry.GetTicket(ctx, id)
		assert.ErrorIs(t, err, ErrTicketNotFound, "ticket %s should be gone", id)
	}
}

func TestRegistryConcurrentChildRegistration(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry()
	authority := NewAuthority(registry, nil)

	tgt, err := authority.CreateTicketGrantingTicket(ctx, Credential{PrincipalID: "alice"})
	require.NoError(t, err)

	const grants = 16
	granted := make(chan string, grants)
	var wg sync.WaitGroup
	for i := 0; i < grants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := authority.GrantServiceTicket(ctx, tgt.ID, "https://app.example.org/callback")
			assert.NoError(t, err)
			granted <- st.ID
		}()
	}
	wg.Wait()
	close(granted)

	var childIDs []string
	for id := range granted {
		childIDs = append(childIDs, id)
	}

	// every concurrent grant must be recorded on the parent, so the cascade
	// reaches all of them
	parent, err := registry.GetTicket(ctx, tgt.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, childIDs, parent.Children())

	require.True(t, registry.DeleteTicket(ctx, tgt.ID))
	for _, id := range childIDs {
		_, err := registry.GetTicket(ctx, id)
		assert.ErrorIs(t, err, ErrTicketNotFound, "ticket %s should be gone", id)
	}
}

func TestRegistryDeleteServiceTicketOnly(t *testing.T) {
	ctx := context.Background()
	registry := newTestRegistry()
	authority := NewAuthority(registry, nil)

	tgt, err := authority.CreateTicketGrantingTicket(ctx, Credential{PrincipalID: "alice"})
	require.NoError(t, err)
	st, err := authority.GrantServiceTicket(ctx, tgt.ID, "https://app.example.org/callback")
	require.NoError(t, err)

	// deleting a leaf leaves the granting ticket intact
	assert.True(t, registry.DeleteTicket(ctx, st.ID))
	_, err = registry.GetTicket(ctx, tgt.ID)
	assert.NoError(t, err)
}
