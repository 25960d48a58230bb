package pipeline

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/doismellburning/spectralfx/config"
)

func runTrigger(t *testing.T, p config.FxParameters) (notified chan struct{}, stop func()) {
	t.Helper()
	params := &atomic.Pointer[config.FxParameters]{}
	params.Store(&p)

	tuneGate := newGate()
	tuneGate.ClearActionDone()
	shutdownCh := make(chan struct{})

	var waiterShutdown atomic.Bool
	done := make(chan struct{})
	go func() {
		tuneGate.Wait(&waiterShutdown)
		close(done)
	}()

	tm := newTriggerManager(tuneGate, params, shutdownCh)
	var wg sync.WaitGroup
	wg.Add(1)
	go tm.worker(&wg)

	return done, func() {
		close(shutdownCh)
		wg.Wait()
		waiterShutdown.Store(true)
		tuneGate.Broadcast()
	}
}

func TestTriggerManagerFiresWhenNotContinuous(t *testing.T) {
	p := config.Default()
	p.ContinuousTuning = false
	p.TuneIntervalMs = 5

	notified, stop := runTrigger(t, p)
	defer stop()

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("trigger manager never notified the retune gate")
	}
}

func TestTriggerManagerDormantWhenContinuous(t *testing.T) {
	p := config.Default()
	p.ContinuousTuning = true
	p.TuneIntervalMs = 5

	notified, stop := runTrigger(t, p)
	defer stop()

	select {
	case <-notified:
		t.Fatal("trigger manager notified while continuous tuning was enabled")
	case <-time.After(50 * time.Millisecond):
		assert.True(t, true)
	}
}
