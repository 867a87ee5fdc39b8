package subscriptions

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"time"

	"solpass.app/cloud/internal/billing"
	"solpass.app/cloud/internal/events"
	"solpass.app/cloud/internal/logger"
	"solpass.app/cloud/internal/metrics"
	"solpass.app/cloud/models"
	"solpass.app/cloud/storage"
)

var (
	ErrUnknownPlan       = errors.New("unknown plan")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Service is the subscription record store. Each wallet address owns one
// partition, serialized as a JSON array under the key
// "subscriptions_<walletAddress>".
//
// Reads are fail-open: a storage or parse failure is logged and treated as an
// empty partition, never surfaced, because subscription display is
// non-critical. Writes are fail-silent for the same reason. Every mutation is
// a full read-modify-write of the partition; two concurrent mutations of the
// same wallet can race and the later write wins. That lost-update anomaly is
// accepted for single-user interactive usage.
type Service struct {
	store storage.Store
	bus   *events.Bus
}

func NewService(store storage.Store, bus *events.Bus) *Service {
	return &Service{store: store, bus: bus}
}

// PartitionKey returns the storage key for a wallet's subscription list.
// The layout is shared with earlier builds of the product; changing it
// orphans existing data.
func PartitionKey(walletAddress string) string {
	return "subscriptions_" + walletAddress
}

// GetAll returns the stored subscriptions for a wallet, oldest first. Missing
// partitions, storage failures, and parse failures all yield an empty slice.
func (s *Service) GetAll(ctx context.Context, walletAddress string) []models.Subscription {
	data, err := s.store.Get(ctx, PartitionKey(walletAddress))
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("read", "error").Inc()
		logger.Warn("Failed to read subscription partition", map[string]interface{}{
			"wallet_address": walletAddress,
			"error":          err.Error(),
		})
		return []models.Subscription{}
	}
	if data == nil {
		metrics.StoreOperationsTotal.WithLabelValues("read", "empty").Inc()
		return []models.Subscription{}
	}

	var subs []models.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("read", "parse_error").Inc()
		logger.Warn("Failed to parse subscription partition, treating as empty", map[string]interface{}{
			"wallet_address": walletAddress,
			"error":          err.Error(),
		})
		return []models.Subscription{}
	}

	metrics.StoreOperationsTotal.WithLabelValues("read", "ok").Inc()
	return subs
}

// SaveAll overwrites the wallet's entire partition. Failures are logged and
// swallowed; the caller's in-memory view may then be ahead of persisted state
// until the next reload.
func (s *Service) SaveAll(ctx context.Context, walletAddress string, subs []models.Subscription) {
	data, err := json.Marshal(subs)
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("write", "error").Inc()
		logger.Error("Failed to serialize subscription partition", map[string]interface{}{
			"wallet_address": walletAddress,
			"error":          err.Error(),
		})
		return
	}

	if err := s.store.Set(ctx, PartitionKey(walletAddress), data); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("write", "error").Inc()
		logger.Error("Failed to write subscription partition", map[string]interface{}{
			"wallet_address": walletAddress,
			"error":          err.Error(),
		})
		return
	}

	metrics.StoreOperationsTotal.WithLabelValues("write", "ok").Inc()
}

// Add appends a subscription to the wallet's partition.
func (s *Service) Add(ctx context.Context, walletAddress string, sub models.Subscription) {
	subs := s.GetAll(ctx, walletAddress)
	subs = append(subs, sub)
	s.SaveAll(ctx, walletAddress, subs)
}

// GetOne looks a subscription up by id.
func (s *Service) GetOne(ctx context.Context, walletAddress, id string) (models.Subscription, bool) {
	for _, sub := range s.GetAll(ctx, walletAddress) {
		if sub.ID == id {
			return sub, true
		}
	}
	return models.Subscription{}, false
}

// Fields is a partial update: nil means "leave unchanged". Present fields
// overwrite; no cross-field consistency is enforced, so for example
// PausedUntil survives a resume unless explicitly rewritten.
type Fields struct {
	PlanID           *models.Plan
	Status           *models.Status
	NextBillingDate  *int64
	CancellationDate *int64
	PausedUntil      *int64
	Amount           *float64
}

func (f Fields) apply(sub *models.Subscription) {
	if f.PlanID != nil {
		sub.PlanID = *f.PlanID
	}
	if f.Status != nil {
		sub.Status = *f.Status
	}
	if f.NextBillingDate != nil {
		sub.NextBillingDate = *f.NextBillingDate
	}
	if f.CancellationDate != nil {
		sub.CancellationDate = *f.CancellationDate
	}
	if f.PausedUntil != nil {
		sub.PausedUntil = *f.PausedUntil
	}
	if f.Amount != nil {
		sub.Amount = *f.Amount
	}
}

// Update merges fields into the subscription with the given id and reports
// whether it was found. A miss leaves the partition untouched; the explicit
// return exists so callers can tell a no-op from a hit instead of guessing.
func (s *Service) Update(ctx context.Context, walletAddress, id string, fields Fields) bool {
	subs := s.GetAll(ctx, walletAddress)

	for i := range subs {
		if subs[i].ID == id {
			fields.apply(&subs[i])
			s.SaveAll(ctx, walletAddress, subs)
			return true
		}
	}

	return false
}

// ClearAll drops the wallet's entire partition.
func (s *Service) ClearAll(ctx context.Context, walletAddress string) {
	if err := s.store.Delete(ctx, PartitionKey(walletAddress)); err != nil {
		metrics.StoreOperationsTotal.WithLabelValues("delete", "error").Inc()
		logger.Error("Failed to clear subscription partition", map[string]interface{}{
			"wallet_address": walletAddress,
			"error":          err.Error(),
		})
		return
	}
	metrics.StoreOperationsTotal.WithLabelValues("delete", "ok").Inc()
}

// Create starts a subscription on a plan, charging the first mock payment
// immediately. It publishes wallet:subscription-created and
// wallet:transaction-completed.
func (s *Service) Create(ctx context.Context, walletAddress string, plan models.Plan, now int64) (models.Subscription, error) {
	if !models.ValidPlan(plan) {
		return models.Subscription{}, ErrUnknownPlan
	}

	sub := models.Subscription{
		ID:              billing.NewSubscriptionID(),
		PlanID:          plan,
		WalletAddress:   walletAddress,
		Status:          models.StatusActive,
		CreatedAt:       now,
		NextBillingDate: billing.NextBillingDate(now, models.IntervalMonth),
		Amount:          models.PlanAmount(plan),
		Interval:        models.IntervalMonth,
	}

	payment := models.PaymentRecord{
		ID:             billing.NewPaymentID(),
		SubscriptionID: sub.ID,
		Amount:         sub.Amount,
		Timestamp:      now,
		TxSignature:    mockTxSignature(),
		Status:         models.PaymentSuccess,
	}
	sub.PaymentHistory = []models.PaymentRecord{payment}

	s.Add(ctx, walletAddress, sub)
	metrics.PaymentsTotal.WithLabelValues(string(plan)).Inc()

	s.bus.Publish(events.SubscriptionCreated, map[string]interface{}{
		"subscriptionId": sub.ID,
		"action":         "created",
	})
	s.bus.Publish(events.TransactionCompleted, map[string]interface{}{
		"signature": payment.TxSignature,
		"type":      "subscription_payment",
	})

	return sub, nil
}

// Pause suspends billing until the given timestamp.
func (s *Service) Pause(ctx context.Context, walletAddress, id string, until int64) (models.Subscription, error) {
	return s.transition(ctx, walletAddress, id, models.StatusPaused, "paused", Fields{PausedUntil: &until})
}

// Resume reactivates a paused subscription. PausedUntil is deliberately left
// as it was; nothing reads it once the status is active again.
func (s *Service) Resume(ctx context.Context, walletAddress, id string) (models.Subscription, error) {
	return s.transition(ctx, walletAddress, id, models.StatusActive, "resumed", Fields{})
}

// Cancel terminates the subscription, stamping the cancellation date.
func (s *Service) Cancel(ctx context.Context, walletAddress, id string, now int64) (models.Subscription, error) {
	return s.transition(ctx, walletAddress, id, models.StatusCancelled, "cancelled", Fields{CancellationDate: &now})
}

// ErrNotFound distinguishes a missing record from an illegal transition.
var ErrNotFound = errors.New("subscription not found")

func (s *Service) transition(ctx context.Context, walletAddress, id string, to models.Status, action string, extra Fields) (models.Subscription, error) {
	sub, found := s.GetOne(ctx, walletAddress, id)
	if !found {
		return models.Subscription{}, ErrNotFound
	}
	if !models.CanTransition(sub.Status, to) {
		return models.Subscription{}, ErrInvalidTransition
	}

	extra.Status = &to
	if !s.Update(ctx, walletAddress, id, extra) {
		return models.Subscription{}, ErrNotFound
	}

	s.bus.Publish(events.SubscriptionUpdated, map[string]interface{}{
		"subscriptionId": id,
		"action":         action,
	})

	updated, _ := s.GetOne(ctx, walletAddress, id)
	return updated, nil
}

// RunBilling is the mocked billing engine. Paused subscriptions whose pause
// window has lapsed are reactivated, then every active subscription at or
// past its next billing date is charged: a success PaymentRecord with a fake
// transaction signature is appended and the cycle advances one calendar month
// from the previous due date. Returns the payments charged in this run.
func (s *Service) RunBilling(ctx context.Context, walletAddress string, now int64) []models.PaymentRecord {
	subs := s.GetAll(ctx, walletAddress)

	var charged []models.PaymentRecord
	updated := map[string]string{}

	for i := range subs {
		sub := &subs[i]

		if sub.Status == models.StatusPaused && sub.PausedUntil > 0 && now >= sub.PausedUntil {
			sub.Status = models.StatusActive
			updated[sub.ID] = "reactivated"
		}

		if !billing.IsBillingDue(*sub, now) {
			continue
		}

		payment := models.PaymentRecord{
			ID:             billing.NewPaymentID(),
			SubscriptionID: sub.ID,
			Amount:         sub.Amount,
			Timestamp:      now,
			TxSignature:    mockTxSignature(),
			Status:         models.PaymentSuccess,
		}
		sub.PaymentHistory = append(sub.PaymentHistory, payment)
		sub.NextBillingDate = billing.NextBillingDate(sub.NextBillingDate, sub.Interval)

		charged = append(charged, payment)
		updated[sub.ID] = "billed"
		metrics.PaymentsTotal.WithLabelValues(string(sub.PlanID)).Inc()
	}

	if len(updated) == 0 {
		return nil
	}

	s.SaveAll(ctx, walletAddress, subs)

	for _, sub := range subs {
		action, ok := updated[sub.ID]
		if !ok {
			continue
		}
		s.bus.Publish(events.SubscriptionUpdated, map[string]interface{}{
			"subscriptionId": sub.ID,
			"action":         action,
		})
	}
	for _, payment := range charged {
		s.bus.Publish(events.TransactionCompleted, map[string]interface{}{
			"signature": payment.TxSignature,
			"type":      "subscription_payment",
		})
	}

	return charged
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// mockTxSignature fabricates a base58 string shaped like a Solana transaction
// signature. The real rail is the wallet SDK; the demo billing flow never
// touches the chain.
func mockTxSignature() string {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return "MockSig" + time.Now().UTC().Format("20060102150405")
	}
	sig := make([]byte, 64)
	for i, b := range buf {
		sig[i] = base58Alphabet[int(b)%len(base58Alphabet)]
	}
	return string(sig)
}
