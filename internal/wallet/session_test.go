package wallet

import (
	"errors"
	"testing"
)

func TestConnectAndGet(t *testing.T) {
	registry := NewRegistry()

	session := registry.Connect("7fUAJdStEuGbc3sM84cKRL6yYaaSstyLSU4ve5oovLS7", "My Wallet", "user@example.com")
	if session.Token == "" {
		t.Fatalf("Expected a session token")
	}
	if session.ConnectedAt == 0 {
		t.Errorf("Expected a connection timestamp")
	}

	got, err := registry.Get(session.Token)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.Address != "7fUAJdStEuGbc3sM84cKRL6yYaaSstyLSU4ve5oovLS7" {
		t.Errorf("Expected wallet address round-trip, got %s", got.Address)
	}
	if got.Label != "My Wallet" || got.Email != "user@example.com" {
		t.Errorf("Expected label and email round-trip, got %+v", got)
	}
}

func TestGet_UnknownToken(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("no-such-token")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestConnect_DistinctTokens(t *testing.T) {
	registry := NewRegistry()

	first := registry.Connect("addr1", "", "")
	second := registry.Connect("addr1", "", "")

	if first.Token == second.Token {
		t.Errorf("Expected distinct tokens for separate connects")
	}
}

func TestFindByAddress(t *testing.T) {
	registry := NewRegistry()
	registry.Connect("addr1", "", "one@example.com")

	session, found := registry.FindByAddress("addr1")
	if !found {
		t.Fatalf("Expected to find session by address")
	}
	if session.Email != "one@example.com" {
		t.Errorf("Expected session email, got %s", session.Email)
	}

	if _, found := registry.FindByAddress("addr2"); found {
		t.Errorf("Expected no session for unknown address")
	}
}

func TestDisconnect(t *testing.T) {
	registry := NewRegistry()

	session := registry.Connect("addr1", "", "")
	registry.Disconnect(session.Token)

	if _, err := registry.Get(session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected session gone after disconnect, got %v", err)
	}

	// disconnecting again is harmless
	registry.Disconnect(session.Token)
}
