package event

import "testing"

func TestBus_DispatchIsSynchronous(t *testing.T) {
	bus := NewBus()
	var got []int
	bus.Subscribe("tick", func(evt any) { got = append(got, evt.(int)) })
	bus.Subscribe("tick", func(evt any) { got = append(got, evt.(int)*10) })

	bus.Publish("tick", 1)
	bus.Publish("tick", 2)

	// Handlers run inline in subscription order, no goroutines involved.
	want := []int{1, 10, 2, 20}
	if len(got) != len(want) {
		t.Fatalf("deliveries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("deliveries = %v, want %v", got, want)
		}
	}
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	landed := 0
	bus.Subscribe(EventLanding, func(any) { landed++ })

	bus.Publish(EventJump, JumpEvent{Count: 1})
	bus.Publish(EventLanding, LandingEvent{Body: 7})

	if landed != 1 {
		t.Fatalf("landing handler ran %d times, want 1", landed)
	}
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus()
	delivered := false
	bus.Subscribe("boom", func(any) { panic("handler exploded") })
	bus.Subscribe("boom", func(any) { delivered = true })

	bus.Publish("boom", nil)

	if !delivered {
		t.Fatalf("panic in an earlier handler swallowed the event")
	}
}

func TestBus_NilSafety(t *testing.T) {
	var bus *Bus
	bus.Subscribe("x", func(any) {})
	bus.Publish("x", nil)

	b := NewBus()
	b.Subscribe("x", nil)
	b.Publish("no-subscribers", 42)
}
