package pipeline

import (
	"sync"
	"sync/atomic"
)

// gate is a single SyncPrimitives instance from spec.md §3/§5: a
// condition variable, its mutex, an action_done flag, and a shared
// "common_condition" boolean. Two instances exist in a Controller --
// one for BufferManager -> CalculationEngine FFT handoff, one for
// TriggerManager -> CalculationEngine retune gating -- grounded on the
// teacher's tq.go wake_up_cond/wake_up_mutex producer-consumer pair.
type gate struct {
	mu         sync.Mutex
	cond       *sync.Cond
	actionDone atomic.Bool
	signaled   bool
}

func newGate() *gate {
	g := &gate{}
	g.cond = sync.NewCond(&g.mu)
	g.actionDone.Store(true)
	return g
}

// ActionDone reports whether the consumer has finished its last pass
// (acquire semantics via the underlying atomic).
func (g *gate) ActionDone() bool { return g.actionDone.Load() }

// ClearActionDone marks the consumer busy; called by the producer
// right before handing off new work.
func (g *gate) ClearActionDone() { g.actionDone.Store(false) }

// MarkActionDone marks the consumer idle again; called by the
// consumer once its pass completes (release semantics).
func (g *gate) MarkActionDone() { g.actionDone.Store(true) }

// Notify wakes one waiter. Bounded and allocation-free: legal to call
// from the audio thread.
func (g *gate) Notify() {
	g.mu.Lock()
	g.signaled = true
	g.mu.Unlock()
	g.cond.Signal()
}

// Wait blocks until Notify is called or shutdown becomes true, and
// reports whether it woke for real work (false means the caller
// should exit -- a spurious wakeup with shutdown still false simply
// loops back around inside Wait itself).
func (g *gate) Wait(shutdown *atomic.Bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for !g.signaled && !shutdown.Load() {
		g.cond.Wait()
	}
	if !g.signaled {
		return false
	}
	g.signaled = false
	return true
}

// Broadcast wakes every waiter; used during shutdown alongside setting
// the shared shutdown flag.
func (g *gate) Broadcast() {
	g.mu.Lock()
	g.cond.Broadcast()
	g.mu.Unlock()
}
