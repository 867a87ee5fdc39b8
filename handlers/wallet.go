package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"solpass.app/cloud/internal/logger"
)

type ConnectWalletRequest struct {
	Address string `json:"address"`
	Label   string `json:"label,omitempty"`
	Email   string `json:"email,omitempty"`
}

func (cr ConnectWalletRequest) validate() error {
	if cr.Address == "" {
		return fmt.Errorf("address required")
	}
	return nil
}

// ConnectWallet registers the wallet the passkey SDK just authenticated in
// the browser. The backend trusts the client here: the demo has no funds at
// stake server-side, signing stays in the SDK.
func (s *Server) ConnectWallet(w http.ResponseWriter, r *http.Request) {
	var req ConnectWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Empty body")
		return
	}
	if err := req.validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	session := s.Wallets.Connect(req.Address, req.Label, req.Email)

	logger.Info("Wallet connected", map[string]interface{}{
		"wallet_address": session.Address,
	})

	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		writeErrorResponse(w, http.StatusUnauthorized, "Missing session token")
		return
	}

	session, err := s.Wallets.Get(token)
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Unknown session")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) DisconnectWallet(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		writeErrorResponse(w, http.StatusUnauthorized, "Missing session token")
		return
	}

	s.Wallets.Disconnect(token)
	w.WriteHeader(http.StatusNoContent)
}
