package event

import (
	"sync"
	"testing"
)

func TestEmitCallsAllHandlers(t *testing.T) {
	var e Emitter[int]

	var got []int
	e.OnEvent(func(v int) { got = append(got, v) })
	e.OnEvent(func(v int) { got = append(got, v*10) })

	e.Emit(3)

	if len(got) != 2 || got[0] != 3 || got[1] != 30 {
		t.Errorf("handlers received %v, want [3 30]", got)
	}
}

func TestEmitNoHandlers(t *testing.T) {
	var e Emitter[string]
	// Must not panic or block.
	e.Emit("hello")
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	var e Emitter[int]

	var called bool
	e.OnEvent(func(int) { panic("observer bug") })
	e.OnEvent(func(int) { called = true })

	e.Emit(1)

	if !called {
		t.Error("handler after panicking handler was not called")
	}
}

func TestRegisterDuringEmit(t *testing.T) {
	var e Emitter[int]

	e.OnEvent(func(int) {
		e.OnEvent(func(int) {})
	})

	// Must not deadlock.
	e.Emit(1)
	e.Emit(2)
}

func TestConcurrentEmit(t *testing.T) {
	var e Emitter[int]

	var mu sync.Mutex
	count := 0
	e.OnEvent(func(int) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Emit(1)
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("handler called %d times, want 10", count)
	}
}
