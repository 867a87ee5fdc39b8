package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"solpass.app/cloud/internal/email"
	"solpass.app/cloud/internal/logger"
	"solpass.app/cloud/models"
	"solpass.app/cloud/subscriptions"
)

type CreateSubscriptionRequest struct {
	PlanID models.Plan `json:"planId"`
}

func (cr CreateSubscriptionRequest) validate() error {
	if cr.PlanID == "" {
		return fmt.Errorf("planId required")
	}
	if !models.ValidPlan(cr.PlanID) {
		return fmt.Errorf("unknown planId %q", cr.PlanID)
	}
	return nil
}

type UpdateSubscriptionRequest struct {
	Action      string `json:"action"`
	PausedUntil int64  `json:"pausedUntil,omitempty"`
}

func (ur UpdateSubscriptionRequest) validate() error {
	switch ur.Action {
	case "pause":
		if ur.PausedUntil <= 0 {
			return fmt.Errorf("pausedUntil required for pause")
		}
		return nil
	case "resume", "cancel":
		return nil
	case "":
		return fmt.Errorf("action required")
	}
	return fmt.Errorf("unknown action %q", ur.Action)
}

func (s *Server) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	subs := s.Subscriptions.GetAll(r.Context(), address)
	writeJSON(w, http.StatusOK, map[string]interface{}{"subscriptions": subs})
}

func (s *Server) GetSubscription(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	id := chi.URLParam(r, "id")

	sub, found := s.Subscriptions.GetOne(r.Context(), address, id)
	if !found {
		writeErrorResponse(w, http.StatusNotFound, "Subscription not found")
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Empty body")
		return
	}
	if err := req.validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := s.Subscriptions.Create(r.Context(), address, req.PlanID, time.Now().UnixMilli())
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("Subscription created", map[string]interface{}{
		"wallet_address":  address,
		"subscription_id": sub.ID,
		"plan":            string(sub.PlanID),
	})

	s.sendReceipt(address, sub, sub.PaymentHistory[0])

	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	id := chi.URLParam(r, "id")

	var req UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Empty body")
		return
	}
	if err := req.validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var sub models.Subscription
	var err error
	switch req.Action {
	case "pause":
		sub, err = s.Subscriptions.Pause(r.Context(), address, id, req.PausedUntil)
	case "resume":
		sub, err = s.Subscriptions.Resume(r.Context(), address, id)
	case "cancel":
		sub, err = s.Subscriptions.Cancel(r.Context(), address, id, time.Now().UnixMilli())
	}

	if errors.Is(err, subscriptions.ErrNotFound) {
		writeErrorResponse(w, http.StatusNotFound, "Subscription not found")
		return
	}
	if errors.Is(err, subscriptions.ErrInvalidTransition) {
		writeErrorResponse(w, http.StatusConflict, "Invalid status transition")
		return
	}
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "Update failed")
		return
	}

	logger.Info("Subscription updated", map[string]interface{}{
		"wallet_address":  address,
		"subscription_id": id,
		"action":          req.Action,
	})

	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) ClearSubscriptions(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	s.Subscriptions.ClearAll(r.Context(), address)

	logger.Info("Subscription partition cleared", map[string]interface{}{
		"wallet_address": address,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) RunBilling(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	charged := s.Subscriptions.RunBilling(r.Context(), address, time.Now().UnixMilli())

	for _, payment := range charged {
		sub, found := s.Subscriptions.GetOne(r.Context(), address, payment.SubscriptionID)
		if found {
			s.sendReceipt(address, sub, payment)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"charged":  len(charged),
		"payments": charged,
	})
}

// sendReceipt mails a payment receipt when the feature is on and the wallet's
// session carries an email. Billing never depends on the mail going out.
func (s *Server) sendReceipt(address string, sub models.Subscription, payment models.PaymentRecord) {
	if !s.Config.ReceiptEmails {
		return
	}

	session, found := s.Wallets.FindByAddress(address)
	if !found || session.Email == "" {
		return
	}

	if err := email.SendReceipt(session.Email, sub, payment); err != nil {
		logger.Warn("Failed to send payment receipt", map[string]interface{}{
			"wallet_address": address,
			"error":          err.Error(),
		})
	}
}
