package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func rpcServer(t *testing.T, handler func(method string, params []interface{}) (interface{}, *rpcError)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode rpc request: %v", err)
		}
		if req.JSONRPC != "2.0" {
			t.Errorf("Expected jsonrpc 2.0, got %s", req.JSONRPC)
		}

		result, rpcErr := handler(req.Method, req.Params)

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("Failed to encode rpc response: %v", err)
		}
	}))
}

func TestGetBalance(t *testing.T) {
	server := rpcServer(t, func(method string, params []interface{}) (interface{}, *rpcError) {
		if method != "getBalance" {
			t.Errorf("Expected getBalance, got %s", method)
		}
		if len(params) != 1 || params[0] != "addr1" {
			t.Errorf("Expected address param, got %v", params)
		}
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 12345},
			"value":   2_500_000_000,
		}, nil
	})
	defer server.Close()

	client := NewClient(server.URL)
	balance, err := client.GetBalance(context.Background(), "addr1")
	if err != nil {
		t.Fatalf("Failed to get balance: %v", err)
	}
	if balance != 2.5 {
		t.Errorf("Expected 2.5 SOL, got %v", balance)
	}
}

func TestGetBalance_RPCError(t *testing.T) {
	server := rpcServer(t, func(string, []interface{}) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32602, Message: "Invalid param: WrongSize"}
	})
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.GetBalance(context.Background(), "bogus")
	if err == nil {
		t.Fatalf("Expected rpc error")
	}
	if !strings.Contains(err.Error(), "Invalid param") {
		t.Errorf("Expected rpc error message surfaced, got %v", err)
	}
}

func TestGetBalance_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetBalance(context.Background(), "addr1"); err == nil {
		t.Errorf("Expected error for non-200 response")
	}
}

func TestGetSignatures(t *testing.T) {
	blockTime := int64(1700000000)
	server := rpcServer(t, func(method string, params []interface{}) (interface{}, *rpcError) {
		if method != "getSignaturesForAddress" {
			t.Errorf("Expected getSignaturesForAddress, got %s", method)
		}
		opts, ok := params[1].(map[string]interface{})
		if !ok || opts["limit"] != float64(5) {
			t.Errorf("Expected limit option 5, got %v", params)
		}
		return []map[string]interface{}{
			{"signature": "sig1", "slot": 100, "blockTime": blockTime, "confirmationStatus": "finalized"},
			{"signature": "sig2", "slot": 99, "blockTime": nil, "err": map[string]interface{}{"InstructionError": []interface{}{}}},
		}, nil
	})
	defer server.Close()

	client := NewClient(server.URL)
	sigs, err := client.GetSignatures(context.Background(), "addr1", 5)
	if err != nil {
		t.Fatalf("Failed to get signatures: %v", err)
	}

	if len(sigs) != 2 {
		t.Fatalf("Expected 2 signatures, got %d", len(sigs))
	}
	if sigs[0].Signature != "sig1" || sigs[0].ConfirmationStatus != "finalized" {
		t.Errorf("Unexpected first signature: %+v", sigs[0])
	}
	if sigs[0].BlockTime == nil || *sigs[0].BlockTime != blockTime {
		t.Errorf("Expected block time %d, got %v", blockTime, sigs[0].BlockTime)
	}
	if sigs[1].BlockTime != nil {
		t.Errorf("Expected nil block time for unconfirmed entry")
	}
	if sigs[1].Err == nil {
		t.Errorf("Expected failed transaction to carry an error object")
	}
}

func TestGetSignatures_DefaultLimit(t *testing.T) {
	server := rpcServer(t, func(method string, params []interface{}) (interface{}, *rpcError) {
		opts := params[1].(map[string]interface{})
		if opts["limit"] != float64(20) {
			t.Errorf("Expected default limit 20, got %v", opts["limit"])
		}
		return []map[string]interface{}{}, nil
	})
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetSignatures(context.Background(), "addr1", 0); err != nil {
		t.Fatalf("Failed to get signatures: %v", err)
	}
}

func TestCall_ContextCancelled(t *testing.T) {
	server := rpcServer(t, func(string, []interface{}) (interface{}, *rpcError) {
		return map[string]interface{}{"value": 0}, nil
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL)
	if _, err := client.GetBalance(ctx, "addr1"); err == nil {
		t.Errorf("Expected error for cancelled context")
	}
}
