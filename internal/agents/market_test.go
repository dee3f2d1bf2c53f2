package agents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tokensage/tokensage/internal/dexscreener"
	"github.com/tokensage/tokensage/pkg/models"
)

func newMarketAgent(t *testing.T, handler http.HandlerFunc) *MarketAgent {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMarketAgent(dexscreener.New(
		dexscreener.WithBaseURL(srv.URL),
		dexscreener.WithHTTPClient(srv.Client()),
	))
}

func TestMarketAgentAddressLookup(t *testing.T) {
	agent := newMarketAgent(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/tokens/0x") {
			t.Errorf("expected token lookup, got path %q", r.URL.Path)
		}
		w.Write([]byte(`{"pairs":[{
			"chainId":"ethereum","dexId":"uniswap",
			"baseToken":{"name":"USD Coin","symbol":"USDC"},
			"priceUsd":"1.00","liquidity":{"usd":5000000},
			"volume":{"h24":120000},
			"priceChange":{"h24":0.01}
		}]}`))
	})

	result, err := agent.Process(context.Background(),
		"price of 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !result.OK() {
		t.Fatalf("result status = %v: %s", result.Status, result.Response)
	}
	if result.Type != models.CategoryMarket {
		t.Errorf("Type = %v, want market", result.Type)
	}
	if result.Data["symbol"] != "USDC" {
		t.Errorf("Data[symbol] = %v, want USDC", result.Data["symbol"])
	}
	if result.Data["chain"] != "ethereum" {
		t.Errorf("Data[chain] = %v, want ethereum", result.Data["chain"])
	}
	if !strings.Contains(result.Response, "USD Coin") {
		t.Errorf("response missing token name: %q", result.Response)
	}
}

func TestMarketAgentUnknownToken(t *testing.T) {
	agent := newMarketAgent(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs":[]}`))
	})

	result, err := agent.Process(context.Background(),
		"price of 0x0000000000000000000000000000000000000001", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	// Unknown token is a domain answer, not a dispatch failure.
	if result.OK() {
		t.Error("unknown token should produce an error result")
	}
}

func TestMarketAgentSearch(t *testing.T) {
	agent := newMarketAgent(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected search, got path %q", r.URL.Path)
		}
		w.Write([]byte(`{"pairs":[
			{"chainId":"ethereum","dexId":"uniswap","baseToken":{"name":"Pepe","symbol":"PEPE"},"priceUsd":"0.00001","liquidity":{"usd":100}},
			{"chainId":"base","dexId":"baseswap","baseToken":{"name":"Pepe 2","symbol":"PEPE2"},"priceUsd":"0.002","liquidity":{"usd":50}}
		]}`))
	})

	result, err := agent.Process(context.Background(), "find me the pepe token", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Data["symbol"] != "PEPE" {
		t.Errorf("Data[symbol] = %v, want best match PEPE", result.Data["symbol"])
	}
	if !strings.Contains(result.Response, "PEPE2") {
		t.Errorf("response should list other matches: %q", result.Response)
	}
}

func TestMarketAgentServerFailure(t *testing.T) {
	agent := newMarketAgent(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := agent.Process(context.Background(), "eth price", nil)
	if err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
