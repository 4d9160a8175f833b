package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HerbHall/healthgenie/pkg/plugin"
	"go.uber.org/zap"
)

func TestPublishDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got []string
	bus.Subscribe("genie.connected", func(_ context.Context, e plugin.Event) {
		got = append(got, e.Topic)
	})

	err := bus.Publish(context.Background(), plugin.Event{
		Topic:     "genie.connected",
		Source:    "genie",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(got) != 1 || got[0] != "genie.connected" {
		t.Errorf("handler received %v, want [genie.connected]", got)
	}
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls int
	bus.Subscribe("advisor.answered", func(_ context.Context, _ plugin.Event) {
		calls++
	})

	bus.Publish(context.Background(), plugin.Event{Topic: "genie.failed"})

	if calls != 0 {
		t.Errorf("handler called %d times for unrelated topic, want 0", calls)
	}
}

func TestSubscribeAllReceivesEveryTopic(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var topics []string
	bus.SubscribeAll(func(_ context.Context, e plugin.Event) {
		topics = append(topics, e.Topic)
	})

	bus.Publish(context.Background(), plugin.Event{Topic: "genie.resolving"})
	bus.Publish(context.Background(), plugin.Event{Topic: "advisor.asked"})

	if len(topics) != 2 {
		t.Fatalf("wildcard handler received %d events, want 2", len(topics))
	}
	if topics[0] != "genie.resolving" || topics[1] != "advisor.asked" {
		t.Errorf("topics = %v, want [genie.resolving advisor.asked]", topics)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls int
	unsub := bus.Subscribe("genie.attempt", func(_ context.Context, _ plugin.Event) {
		calls++
	})

	bus.Publish(context.Background(), plugin.Event{Topic: "genie.attempt"})
	unsub()
	bus.Publish(context.Background(), plugin.Event{Topic: "genie.attempt"})

	if calls != 1 {
		t.Errorf("handler called %d times, want 1 (unsubscribe must stop delivery)", calls)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus(zap.NewNop())

	unsub := bus.Subscribe("genie.attempt", func(_ context.Context, _ plugin.Event) {})
	unsub()
	unsub() // second call must not panic or remove another handler

	var calls int
	bus.Subscribe("genie.attempt", func(_ context.Context, _ plugin.Event) { calls++ })
	bus.Publish(context.Background(), plugin.Event{Topic: "genie.attempt"})

	if calls != 1 {
		t.Errorf("remaining handler called %d times, want 1", calls)
	}
}

func TestPublishAsyncDelivers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls atomic.Int32
	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe("advisor.failed", func(_ context.Context, _ plugin.Event) {
		calls.Add(1)
		wg.Done()
	})
	bus.SubscribeAll(func(_ context.Context, _ plugin.Event) {
		calls.Add(1)
		wg.Done()
	})

	bus.PublishAsync(context.Background(), plugin.Event{Topic: "advisor.failed"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async delivery")
	}

	if got := calls.Load(); got != 2 {
		t.Errorf("async delivery count = %d, want 2", got)
	}
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var calls int
	bus.Subscribe("genie.failed", func(_ context.Context, _ plugin.Event) {
		panic("handler bug")
	})
	bus.Subscribe("genie.failed", func(_ context.Context, _ plugin.Event) {
		calls++
	})

	if err := bus.Publish(context.Background(), plugin.Event{Topic: "genie.failed"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("second handler called %d times, want 1 (panic must be isolated)", calls)
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe("genie.attempt", func(_ context.Context, _ plugin.Event) {})
			defer unsub()
		}()
		go func() {
			defer wg.Done()
			bus.Publish(context.Background(), plugin.Event{Topic: "genie.attempt"})
		}()
	}
	wg.Wait()
}
