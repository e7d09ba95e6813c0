// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pubsub

import (
	"testing"

	"github.com/danielhkuo/narrowly/models"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch1, cancel1 := b.Subscribe("list-1")
	defer cancel1()
	ch2, cancel2 := b.Subscribe("list-1")
	defer cancel2()

	b.Publish("list-1", models.SessionView{ListID: "list-1", RoundIndex: 2})

	for i, ch := range []<-chan models.SessionView{ch1, ch2} {
		select {
		case v := <-ch:
			if v.RoundIndex != 2 {
				t.Errorf("Subscriber %d got wrong view: %+v", i, v)
			}
		default:
			t.Errorf("Subscriber %d received nothing", i)
		}
	}
}

func TestPublishScopedToSession(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch, cancel := b.Subscribe("list-other")
	defer cancel()

	b.Publish("list-1", models.SessionView{ListID: "list-1"})

	select {
	case v := <-ch:
		t.Errorf("Subscriber of another session received %+v", v)
	default:
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	// Must not block or panic.
	b.Publish("list-1", models.SessionView{ListID: "list-1"})
}

func TestSlowSubscriberSkipped(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	slow, cancelSlow := b.Subscribe("list-1")
	defer cancelSlow()
	fast, cancelFast := b.Subscribe("list-1")
	defer cancelFast()

	// Overfill the slow subscriber's buffer without draining it. Publish must
	// keep returning and the fast subscriber must keep receiving.
	for i := 0; i < subscriberBuffer+3; i++ {
		b.Publish("list-1", models.SessionView{RoundIndex: i})
		<-fast
	}

	if len(slow) != subscriberBuffer {
		t.Errorf("Expected slow buffer pinned at %d, got %d", subscriberBuffer, len(slow))
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch, cancel := b.Subscribe("list-1")
	cancel()
	cancel() // idempotent

	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after cancel")
	}

	// Publishing after cancel must not panic on the closed channel.
	b.Publish("list-1", models.SessionView{})
}

func TestCancelCleansEmptySession(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	_, cancel := b.Subscribe("list-1")
	cancel()

	b.mu.Lock()
	_, ok := b.subs["list-1"]
	b.mu.Unlock()
	if ok {
		t.Error("Empty subscriber set should be removed from the registry")
	}
}

func TestCloseShutsDownSubscribers(t *testing.T) {
	b := NewBroker()

	ch, cancel := b.Subscribe("list-1")
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("Close should close subscriber channels")
	}
	cancel() // safe after Close

	// Post-close subscriptions get an already-closed channel.
	ch2, _ := b.Subscribe("list-1")
	if _, ok := <-ch2; ok {
		t.Error("Subscribe after Close should yield a closed channel")
	}

	b.Close() // idempotent
}
