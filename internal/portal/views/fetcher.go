package views

import (
	"context"
	"sync"
)

// fetcherSet hands out per-view fetch contexts. Starting a fetch for a view
// cancels that view's previous in-flight fetch, so whichever response was
// requested last is the only one that lands.
type fetcherSet struct {
	mu       sync.Mutex
	inFlight map[string]*fetch
}

type fetch struct {
	gen    uint64
	cancel context.CancelFunc
}

func newFetcherSet() *fetcherSet {
	return &fetcherSet{inFlight: make(map[string]*fetch)}
}

// begin cancels the view's previous fetch and registers a new one. The
// returned cancel releases the registration; a fetch that was already
// superseded leaves the newer registration alone.
func (f *fetcherSet) begin(parent context.Context, view string) (context.Context, context.CancelFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var gen uint64
	if prev, ok := f.inFlight[view]; ok {
		prev.cancel()
		gen = prev.gen + 1
	}

	ctx, cancel := context.WithCancel(parent)
	f.inFlight[view] = &fetch{gen: gen, cancel: cancel}

	return ctx, func() {
		cancel()
		f.mu.Lock()
		defer f.mu.Unlock()
		if current, ok := f.inFlight[view]; ok && current.gen == gen {
			delete(f.inFlight, view)
		}
	}
}
