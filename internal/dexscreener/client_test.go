package dexscreener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestTokenPairsPicksMostLiquid(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens/0xabc" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"pairs":[
			{"chainId":"ethereum","dexId":"uniswap","baseToken":{"symbol":"ETH"},"priceUsd":"2500.10","liquidity":{"usd":1000}},
			{"chainId":"ethereum","dexId":"sushiswap","baseToken":{"symbol":"ETH"},"priceUsd":"2501.00","liquidity":{"usd":90000}},
			{"chainId":"base","dexId":"baseswap","baseToken":{"symbol":"ETH"},"priceUsd":"2499.00","liquidity":{"usd":500}}
		]}`))
	})

	pair, err := client.TokenPairs(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("TokenPairs: %v", err)
	}
	if pair.DexID != "sushiswap" {
		t.Errorf("DexID = %q, want the most liquid pair (sushiswap)", pair.DexID)
	}
	if pair.Price() != 2501.00 {
		t.Errorf("Price() = %v, want 2501.00", pair.Price())
	}
}

func TestTokenPairsNoPairs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[]}`))
	})

	_, err := client.TokenPairs(context.Background(), "0xdead")
	if !errors.Is(err, ErrNoPairs) {
		t.Errorf("err = %v, want ErrNoPairs", err)
	}
}

func TestTokenPairsServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.TokenPairs(context.Background(), "0xabc"); err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestSearchLimits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "pepe" {
			t.Errorf("q = %q, want pepe", got)
		}
		w.Write([]byte(`{"pairs":[
			{"baseToken":{"symbol":"PEPE"}},
			{"baseToken":{"symbol":"PEPE2"}},
			{"baseToken":{"symbol":"PEPECOIN"}}
		]}`))
	})

	pairs, err := client.Search(context.Background(), "pepe", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(pairs) != 2 {
		t.Errorf("len(pairs) = %d, want 2", len(pairs))
	}
}

func TestSearchCanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[]}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Search(ctx, "pepe", 1); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
