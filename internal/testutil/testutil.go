package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"solpass.app/cloud/handlers"
	"solpass.app/cloud/internal/config"
	"solpass.app/cloud/internal/events"
	"solpass.app/cloud/internal/solana"
	"solpass.app/cloud/internal/wallet"
	"solpass.app/cloud/models"
	"solpass.app/cloud/storage"
	"solpass.app/cloud/subscriptions"
)

// TestWallet is a syntactically plausible devnet address used across tests.
const TestWallet = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

// StubSolana implements the read-only RPC surface with canned responses.
type StubSolana struct {
	Balance    float64
	Signatures []solana.SignatureInfo
	Err        error
}

func (s *StubSolana) GetBalance(ctx context.Context, address string) (float64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Balance, nil
}

func (s *StubSolana) GetSignatures(ctx context.Context, address string, limit int) ([]solana.SignatureInfo, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if limit < len(s.Signatures) {
		return s.Signatures[:limit], nil
	}
	return s.Signatures, nil
}

// TestEnv bundles everything a handler test needs.
type TestEnv struct {
	Server  *handlers.Server
	Store   *storage.MemoryStore
	Bus     *events.Bus
	Subs    *subscriptions.Service
	Wallets *wallet.Registry
	Solana  *StubSolana
	Config  *config.Config
}

// NewTestEnv builds a server backed by in-memory storage and a stub RPC
// client. Rate limits are high enough to never trip in tests.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	cfg := &config.Config{
		Port:         "8080",
		RateLimitMax: 10000,
	}

	store := storage.NewMemoryStore()
	bus := events.NewBus()
	subs := subscriptions.NewService(store, bus)
	wallets := wallet.NewRegistry()
	rpc := &StubSolana{Balance: 1.5}

	server := handlers.NewServer(cfg, subs, wallets, rpc, bus, "test")

	return &TestEnv{
		Server:  server,
		Store:   store,
		Bus:     bus,
		Subs:    subs,
		Wallets: wallets,
		Solana:  rpc,
		Config:  cfg,
	}
}

// DoJSON sends a request with an optional JSON body through the full router.
func (env *TestEnv) DoJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "127.0.0.1:12345"

	w := httptest.NewRecorder()
	env.Server.Router.ServeHTTP(w, req)
	return w
}

// CreateSubscription seeds a subscription through the service layer and
// returns it.
func (env *TestEnv) CreateSubscription(t *testing.T, walletAddress string, plan models.Plan) models.Subscription {
	t.Helper()

	sub, err := env.Subs.Create(context.Background(), walletAddress, plan, 1736899200000) // Jan 15 2025 UTC
	if err != nil {
		t.Fatalf("Failed to seed subscription: %v", err)
	}
	return sub
}

// DecodeJSON decodes a response body into out, failing the test on error.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// AssertErrorResponse checks status code and the error message body.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	t.Helper()

	if w.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d", expectedStatus, w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if response["error"] != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, response["error"])
	}
}

// CollectEvents subscribes to an event and returns a pointer to the payload
// slice, which fills as events are published.
func CollectEvents(t *testing.T, bus *events.Bus, name string) *[]interface{} {
	t.Helper()

	var payloads []interface{}
	unsubscribe := bus.Subscribe(name, func(payload interface{}) {
		payloads = append(payloads, payload)
	})
	t.Cleanup(unsubscribe)
	return &payloads
}
