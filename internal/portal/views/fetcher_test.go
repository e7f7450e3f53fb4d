package views

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeginCancelsPreviousFetch(t *testing.T) {
	t.Parallel()

	f := newFetcherSet()
	parent := context.Background()

	first, done1 := f.begin(parent, "clients")
	require.NoError(t, first.Err())

	second, done2 := f.begin(parent, "clients")
	defer done2()

	require.ErrorIs(t, first.Err(), context.Canceled, "older fetch must be cancelled")
	require.NoError(t, second.Err())
	done1()
	require.NoError(t, second.Err(), "finished stale fetch must not touch the newer one")
}

func TestViewsFetchIndependently(t *testing.T) {
	t.Parallel()

	f := newFetcherSet()
	parent := context.Background()

	clients, doneClients := f.begin(parent, "clients")
	defer doneClients()
	payments, donePayments := f.begin(parent, "payments")
	defer donePayments()

	_, _ = f.begin(parent, "clients")

	require.ErrorIs(t, clients.Err(), context.Canceled)
	require.NoError(t, payments.Err())
}

func TestDoneReleasesRegistration(t *testing.T) {
	t.Parallel()

	f := newFetcherSet()
	ctx, done := f.begin(context.Background(), "documents")
	done()
	require.ErrorIs(t, ctx.Err(), context.Canceled)

	f.mu.Lock()
	_, registered := f.inFlight["documents"]
	f.mu.Unlock()
	require.False(t, registered)
}
