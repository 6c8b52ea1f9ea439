package lifecycle

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func mustReceive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("subscriber channel closed unexpectedly")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func TestLateJoinerReceivesSnapshotFirst(t *testing.T) {
	p := NewPublisher(nopLogger())

	p.Started("B1", Payload{Title: "Morning Show"})
	p.Started("B2", Payload{Title: "Evening Show"})

	events, unsub := p.Subscribe()
	defer unsub()

	// Snapshot replay comes before anything live, in start order.
	first := mustReceive(t, events)
	if first.Kind != EventStarted || first.Payload.BroadcastID != "B1" || first.Payload.Status != StatusLive {
		t.Fatalf("unexpected first event: %+v", first)
	}
	second := mustReceive(t, events)
	if second.Kind != EventStarted || second.Payload.BroadcastID != "B2" {
		t.Fatalf("unexpected second event: %+v", second)
	}

	p.Ended("B1")
	third := mustReceive(t, events)
	if third.Kind != EventEnded || third.Payload.BroadcastID != "B1" || third.Payload.Status != StatusEnded {
		t.Fatalf("unexpected live event: %+v", third)
	}
	if third.Payload.Title != "Morning Show" {
		t.Fatalf("terminal payload lost the title: %+v", third.Payload)
	}
}

func TestStartedRepublishOverwrites(t *testing.T) {
	p := NewPublisher(nopLogger())

	p.Started("B1", Payload{Title: "draft title"})
	p.Started("B1", Payload{Title: "final title"})

	if got := p.ActiveCount(); got != 1 {
		t.Fatalf("republish created a duplicate entry: %d", got)
	}

	snapshot := p.SnapshotForNewClient()
	if len(snapshot) != 1 || snapshot[0].Title != "final title" {
		t.Fatalf("snapshot not overwritten: %+v", snapshot)
	}
}

func TestEndedUnknownBroadcastIsStateNoop(t *testing.T) {
	p := NewPublisher(nopLogger())
	p.Started("B1", Payload{Title: "show"})

	events, unsub := p.Subscribe()
	defer unsub()
	mustReceive(t, events) // snapshot for B1

	p.Ended("B404")
	if got := p.ActiveCount(); got != 1 {
		t.Fatalf("ending unknown broadcast changed state: %d", got)
	}

	// Listeners are still told, with a bare terminal payload.
	ev := mustReceive(t, events)
	if ev.Kind != EventEnded || ev.Payload.BroadcastID != "B404" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestSubscribeAfterAllEnded(t *testing.T) {
	p := NewPublisher(nopLogger())
	p.Started("B1", Payload{Title: "show"})
	p.Ended("B1")

	events, unsub := p.Subscribe()
	defer unsub()

	select {
	case ev := <-events:
		t.Fatalf("expected empty snapshot, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}

	if got := p.ActiveCount(); got != 0 {
		t.Fatalf("active count = %d, want 0", got)
	}
}

func TestUnsubscribeIsIdempotentAndStopsDelivery(t *testing.T) {
	p := NewPublisher(nopLogger())

	events, unsub := p.Subscribe()
	if got := p.SubscriberCount(); got != 1 {
		t.Fatalf("subscriber count = %d, want 1", got)
	}

	unsub()
	unsub()
	if got := p.SubscriberCount(); got != 0 {
		t.Fatalf("subscriber count after unsub = %d, want 0", got)
	}

	// Channel closes so an SSE writer loop can exit.
	if _, ok := <-events; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}

	// Publishing to nobody must not panic.
	p.Started("B1", Payload{Title: "show"})
}
