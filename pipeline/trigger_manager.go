package pipeline

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/doismellburning/spectralfx/config"
)

// TriggerManager is the single timer-gated worker from spec.md §4.7.
// It ticks every tune_interval_ms and, when the engine is in triggered
// (non-continuous) mode, wakes the retune worker. In continuous mode
// it keeps ticking but never signals -- a dormant thread, as spec.md
// describes it.
//
// Go has no native condition-variable timed wait, so this is
// implemented with time.Timer + select, the idiomatic Go equivalent of
// spec.md's "cv.wait_for(interval)".
type TriggerManager struct {
	tuneGate   *gate
	params     *atomic.Pointer[config.FxParameters]
	shutdownCh chan struct{}
}

func newTriggerManager(tuneGate *gate, params *atomic.Pointer[config.FxParameters], shutdownCh chan struct{}) *TriggerManager {
	return &TriggerManager{tuneGate: tuneGate, params: params, shutdownCh: shutdownCh}
}

func (t *TriggerManager) worker(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		p := t.params.Load()
		interval := time.Duration(p.TuneIntervalMs) * time.Millisecond
		timer := time.NewTimer(interval)

		select {
		case <-timer.C:
			if !p.ContinuousTuning {
				t.tuneGate.Notify()
			}
		case <-t.shutdownCh:
			timer.Stop()
			return
		}
	}
}
