package models

// Plan identifies one of the fixed demo billing plans.
type Plan string

const (
	PlanBasic      Plan = "basic"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Status captures the lifecycle of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// PaymentStatus is the outcome of a single billing event.
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// IntervalMonth is the only billing cadence the demo supports.
const IntervalMonth = "month"

// Subscription is one recurring-billing agreement for a wallet. Timestamps
// are unix milliseconds, matching what the web client stores and renders.
type Subscription struct {
	ID               string          `json:"id"`
	PlanID           Plan            `json:"planId"`
	WalletAddress    string          `json:"walletAddress"`
	Status           Status          `json:"status"`
	CreatedAt        int64           `json:"createdAt"`
	NextBillingDate  int64           `json:"nextBillingDate"`
	CancellationDate int64           `json:"cancellationDate,omitempty"`
	PausedUntil      int64           `json:"pausedUntil,omitempty"`
	Amount           float64         `json:"amount"`
	Interval         string          `json:"interval"`
	PaymentHistory   []PaymentRecord `json:"paymentHistory"`
}

// PaymentRecord is one billing event. PaymentHistory is append-only in
// storage; display ordering is a view concern.
type PaymentRecord struct {
	ID             string        `json:"id"`
	SubscriptionID string        `json:"subscriptionId"`
	Amount         float64       `json:"amount"`
	Timestamp      int64         `json:"timestamp"`
	TxSignature    string        `json:"txSignature"`
	Status         PaymentStatus `json:"status"`
}

// ValidPlan reports whether p is one of the known plans.
func ValidPlan(p Plan) bool {
	switch p {
	case PlanBasic, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// CanTransition reports whether a subscription may move from one status to
// another. Cancelled and expired are terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusActive:
		return to == StatusPaused || to == StatusCancelled || to == StatusExpired
	case StatusPaused:
		return to == StatusActive || to == StatusCancelled || to == StatusExpired
	}
	return false
}
