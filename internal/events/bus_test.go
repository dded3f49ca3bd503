package events

import (
	"reflect"
	"sync"
	"testing"
)

func TestBus_DeliversInOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(func(ev SandboxEvent) { got = append(got, "a:"+string(ev.Kind)) })
	bus.Subscribe(func(ev SandboxEvent) { got = append(got, "b:"+string(ev.Kind)) })

	bus.Emit(Build(KindStarted, ""))
	bus.Emit(Build(KindStopped, ""))

	want := []string{"a:started", "b:started", "a:stopped", "b:stopped"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("delivery = %v, want %v", got, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	var count int
	unsubscribe := bus.Subscribe(func(SandboxEvent) { count++ })

	bus.Emit(Build(KindBusy, "execution started"))
	unsubscribe()
	bus.Emit(Build(KindIdle, "execution complete"))

	if count != 1 {
		t.Errorf("handler called %d times, want 1", count)
	}
	if bus.Len() != 0 {
		t.Errorf("Len() = %d, want 0", bus.Len())
	}

	// Idempotent
	unsubscribe()
}

func TestBus_UnsubscribeDuringEmit(t *testing.T) {
	bus := NewBus()

	var first, second int
	var unsubscribeFirst func()
	unsubscribeFirst = bus.Subscribe(func(SandboxEvent) {
		first++
		unsubscribeFirst()
	})
	bus.Subscribe(func(SandboxEvent) { second++ })

	bus.Emit(Build(KindStarted, ""))
	bus.Emit(Build(KindStopped, ""))

	if first != 1 {
		t.Errorf("self-unsubscribing handler called %d times, want 1", first)
	}
	if second != 2 {
		t.Errorf("other handler called %d times, want 2", second)
	}
}

func TestBus_UnsubscribeOnlyRemovesOwnHandler(t *testing.T) {
	bus := NewBus()

	var calls []string
	bus.Subscribe(func(SandboxEvent) { calls = append(calls, "a") })
	unsubB := bus.Subscribe(func(SandboxEvent) { calls = append(calls, "b") })
	bus.Subscribe(func(SandboxEvent) { calls = append(calls, "c") })

	unsubB()
	unsubB()
	bus.Emit(Build(KindIdle, ""))

	if !reflect.DeepEqual(calls, []string{"a", "c"}) {
		t.Errorf("calls = %v, want [a c]", calls)
	}
}

func TestBus_HandlerPanicPropagates(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(func(SandboxEvent) { panic("subscriber bug") })

	defer func() {
		if r := recover(); r == nil {
			t.Error("Emit should not swallow handler panics")
		}
	}()
	bus.Emit(Build(KindError, "boom"))
}

func TestBus_ConcurrentSubscribeAndEmit(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe(func(SandboxEvent) {})
			unsub()
		}()
		go func() {
			defer wg.Done()
			bus.Emit(Build(KindBusy, ""))
		}()
	}
	wg.Wait()

	if bus.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after all unsubscribed", bus.Len())
	}
}

func TestSandboxEvent_String(t *testing.T) {
	if got := Build(KindStarted, "").String(); got != "started" {
		t.Errorf("String() = %q", got)
	}
	if got := Build(KindError, "spawn failed").String(); got != "error: spawn failed" {
		t.Errorf("String() = %q", got)
	}
}

func TestBuild_Timestamp(t *testing.T) {
	ev := Build(KindIdle, "execution complete")
	if ev.Time.IsZero() {
		t.Error("Build() should stamp the event time")
	}
	if ev.Kind != KindIdle || ev.Message != "execution complete" {
		t.Errorf("Build() = %+v", ev)
	}
}
