package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"solpass.app/cloud/internal/events"
	"solpass.app/cloud/internal/logger"
)

// GetBalance proxies the balance screen's RPC read and announces the fresh
// value on the bus so other views pick it up.
func (s *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	balance, err := s.Solana.GetBalance(r.Context(), address)
	if err != nil {
		logger.Warn("Balance fetch failed", map[string]interface{}{
			"wallet_address": address,
			"error":          err.Error(),
		})
		writeErrorResponse(w, http.StatusBadGateway, "Balance unavailable")
		return
	}

	s.Bus.Publish(events.BalanceUpdated, map[string]interface{}{
		"walletAddress": address,
		"balance":       balance,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"walletAddress": address,
		"balance":       balance,
	})
}

func (s *Server) ListTransactions(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			writeErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	sigs, err := s.Solana.GetSignatures(r.Context(), address, limit)
	if err != nil {
		logger.Warn("Transaction history fetch failed", map[string]interface{}{
			"wallet_address": address,
			"error":          err.Error(),
		})
		writeErrorResponse(w, http.StatusBadGateway, "Transaction history unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": sigs})
}

type NotifyTransactionRequest struct {
	Signature string `json:"signature"`
	Type      string `json:"type,omitempty"`
}

func (nr NotifyTransactionRequest) validate() error {
	if nr.Signature == "" {
		return fmt.Errorf("signature required")
	}
	return nil
}

// NotifyTransaction is called by the client after the wallet SDK signed and
// submitted a transfer, so history and balance views refresh without polling.
func (s *Server) NotifyTransaction(w http.ResponseWriter, r *http.Request) {
	var req NotifyTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Empty body")
		return
	}
	if err := req.validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	txType := req.Type
	if txType == "" {
		txType = "transfer"
	}

	s.Bus.Publish(events.TransactionCompleted, map[string]interface{}{
		"signature": req.Signature,
		"type":      txType,
	})

	w.WriteHeader(http.StatusAccepted)
}
