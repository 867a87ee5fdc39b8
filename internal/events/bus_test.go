package events

import (
	"testing"
)

func TestPublish_NoSubscribers(t *testing.T) {
	bus := NewBus()

	// must not panic and must have no observable effect
	bus.Publish(SubscriptionCreated, map[string]string{"subscriptionId": "sub_1"})

	published, delivered := bus.Stats()
	if published != 1 {
		t.Errorf("Expected 1 published event, got %d", published)
	}
	if delivered != 0 {
		t.Errorf("Expected 0 deliveries, got %d", delivered)
	}
}

func TestSubscribePublishUnsubscribe(t *testing.T) {
	bus := NewBus()

	var calls int
	var lastPayload interface{}
	unsubscribe := bus.Subscribe(BalanceUpdated, func(payload interface{}) {
		calls++
		lastPayload = payload
	})

	bus.Publish(BalanceUpdated, "first")
	if calls != 1 {
		t.Fatalf("Expected handler called once, got %d", calls)
	}
	if lastPayload != "first" {
		t.Errorf("Expected payload 'first', got %v", lastPayload)
	}

	unsubscribe()
	bus.Publish(BalanceUpdated, "second")
	if calls != 1 {
		t.Errorf("Expected no call after unsubscribe, got %d calls", calls)
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	bus := NewBus()

	var first, second int
	unsubFirst := bus.Subscribe(TransactionCompleted, func(interface{}) { first++ })
	bus.Subscribe(TransactionCompleted, func(interface{}) { second++ })

	unsubFirst()
	unsubFirst()
	unsubFirst()

	bus.Publish(TransactionCompleted, nil)

	if first != 0 {
		t.Errorf("Expected unsubscribed handler not called, got %d", first)
	}
	if second != 1 {
		t.Errorf("Expected remaining handler called once, got %d", second)
	}
}

func TestPublish_RegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Subscribe(SubscriptionUpdated, func(interface{}) { order = append(order, 1) })
	bus.Subscribe(SubscriptionUpdated, func(interface{}) { order = append(order, 2) })
	bus.Subscribe(SubscriptionUpdated, func(interface{}) { order = append(order, 3) })

	bus.Publish(SubscriptionUpdated, nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("Expected delivery in registration order, got %v", order)
	}
}

func TestPublish_NilPayload(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe(SubscriptionCreated, func(payload interface{}) {
		called = true
		if payload != nil {
			t.Errorf("Expected nil payload, got %v", payload)
		}
	})

	bus.Publish(SubscriptionCreated, nil)
	if !called {
		t.Errorf("Expected handler to be called")
	}
}

func TestSubscribe_IndependentEvents(t *testing.T) {
	bus := NewBus()

	var balance, created int
	bus.Subscribe(BalanceUpdated, func(interface{}) { balance++ })
	bus.Subscribe(SubscriptionCreated, func(interface{}) { created++ })

	bus.Publish(BalanceUpdated, nil)

	if balance != 1 || created != 0 {
		t.Errorf("Expected only the balance handler to fire, got balance=%d created=%d", balance, created)
	}
}

func TestSubscribe_LateSubscriberMissesEarlierEvent(t *testing.T) {
	bus := NewBus()

	bus.Publish(SubscriptionCreated, "early")

	var calls int
	bus.Subscribe(SubscriptionCreated, func(interface{}) { calls++ })

	if calls != 0 {
		t.Errorf("Expected late subscriber to miss earlier event, got %d calls", calls)
	}
}

func TestUnsubscribe_DuringPublish(t *testing.T) {
	bus := NewBus()

	var unsub UnsubscribeFunc
	var calls int
	unsub = bus.Subscribe(BalanceUpdated, func(interface{}) {
		calls++
		unsub()
	})

	bus.Publish(BalanceUpdated, nil)
	bus.Publish(BalanceUpdated, nil)

	if calls != 1 {
		t.Errorf("Expected handler removed by its own invocation, got %d calls", calls)
	}
	if bus.SubscriberCount(BalanceUpdated) != 0 {
		t.Errorf("Expected no remaining subscribers")
	}
}
