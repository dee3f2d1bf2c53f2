package main

import (
	"context"
	"sync"
	"testing"

	"github.com/tokensage/tokensage/internal/agents"
	"github.com/tokensage/tokensage/internal/contextstore"
	"github.com/tokensage/tokensage/internal/orchestrator"
	"github.com/tokensage/tokensage/internal/router"
)

// newServeTestApp builds a minimal app around the swap agent, which
// needs no network or API credentials.
func newServeTestApp(t *testing.T) *app {
	t.Helper()

	scorer, err := router.NewScorer(router.DefaultRegistrations())
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	registry, err := agents.NewRegistry(agents.NewSwapAgent())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	store := contextstore.New(10)
	orch, err := orchestrator.New(scorer, router.New(router.DefaultConfig()), store, registry)
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}
	return &app{orch: orch, store: store}
}

func TestSwitchableFollowsStoredApp(t *testing.T) {
	first := newServeTestApp(t)
	second := newServeTestApp(t)

	sw := &switchable{}
	sw.v.Store(first)

	result := sw.HandleQuery(context.Background(), "swap 10 ETH for USDC")
	if !result.OK() {
		t.Fatalf("swap query failed: %s", result.Response)
	}
	if got := len(sw.Context().Window); got != 1 {
		t.Fatalf("window after query = %d, want 1", got)
	}

	// A config rebuild swaps the active app; the handler must follow.
	sw.v.Store(second)
	if got := len(sw.Context().Window); got != 0 {
		t.Fatalf("window after swap = %d, want 0 (fresh app)", got)
	}

	sw.HandleQuery(context.Background(), "swap 2 SOL for BONK")
	if got := len(second.store.Snapshot().Window); got != 1 {
		t.Errorf("second app window = %d, want 1", got)
	}
	if got := len(first.store.Snapshot().Window); got != 1 {
		t.Errorf("first app window = %d, want 1 (untouched after swap)", got)
	}

	sw.Reset()
	if got := len(second.store.Snapshot().Window); got != 0 {
		t.Errorf("second app window after reset = %d, want 0", got)
	}
	if got := len(first.store.Snapshot().Window); got != 1 {
		t.Errorf("reset must not reach the replaced app, window = %d", got)
	}
}

func TestSwitchableConcurrentSwapAndQuery(t *testing.T) {
	apps := []*app{newServeTestApp(t), newServeTestApp(t)}

	sw := &switchable{}
	sw.v.Store(apps[0])

	// Queries and context reads race against app swaps; every access
	// must go through the atomic pointer.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			sw.HandleQuery(context.Background(), "swap 1 ETH for USDC")
			sw.Context()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			sw.v.Store(apps[i%2])
		}
	}()
	wg.Wait()

	if sw.v.Load() == nil {
		t.Fatal("switchable lost its app")
	}
}
