package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/doismellburning/spectralfx/config"
	"github.com/doismellburning/spectralfx/fft"
	"github.com/doismellburning/spectralfx/oscillator"
	"github.com/doismellburning/spectralfx/ring"
	"github.com/doismellburning/spectralfx/twiddle"
	"github.com/doismellburning/spectralfx/wavetable"
)

// CalculationEngine owns the two analysis-side worker loops described
// in spec.md §4.6: the FFT worker (transform + peak extraction) and
// the retune worker (oscillator bank mapping). They run on two
// goroutines, woken by two independent gates, and hand peaks to each
// other through binMagMu.
type CalculationEngine[T wavetable.Sample] struct {
	ring *ring.Buffer[T]
	bank *oscillator.Bank[T]
	lut  *twiddle.LUT

	calcGate *gate
	tuneGate *gate

	binMagMu      sync.Mutex
	binMag        []fft.BinMag
	binMagValid   int
	binMagScratch []fft.BinMag

	params   *atomic.Pointer[config.FxParameters]
	deltaF   T
	shutdown *atomic.Bool
	logger   *log.Logger
}

func newCalculationEngine[T wavetable.Sample](
	r *ring.Buffer[T],
	bank *oscillator.Bank[T],
	lut *twiddle.LUT,
	calcGate, tuneGate *gate,
	params *atomic.Pointer[config.FxParameters],
	sampleRate T,
	n int,
	shutdown *atomic.Bool,
	logger *log.Logger,
) *CalculationEngine[T] {
	return &CalculationEngine[T]{
		ring:          r,
		bank:          bank,
		lut:           lut,
		calcGate:      calcGate,
		tuneGate:      tuneGate,
		binMag:        make([]fft.BinMag, r.ViewSize()),
		binMagScratch: make([]fft.BinMag, r.ViewSize()),
		params:        params,
		deltaF:        sampleRate / T(n),
		shutdown:      shutdown,
		logger:        logger,
	}
}

// fftWorker is the FFT worker loop from spec.md §4.6.
func (e *CalculationEngine[T]) fftWorker(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		if !e.calcGate.Wait(e.shutdown) {
			return
		}

		fft.ForwardInPlace(e.ring.Out(), e.lut)

		p := e.params.Load()
		valid := fft.ExtractPeaks(e.ring.Out(), e.ring.ViewSize(), p.FFTThreshold, e.binMagScratch)

		e.binMagMu.Lock()
		n := copy(e.binMag, e.binMagScratch[:valid])
		e.binMagValid = n
		e.binMagMu.Unlock()

		if p.ContinuousTuning {
			e.tuneGate.Notify()
		}
		e.calcGate.MarkActionDone()
	}
}

// retuneWorker is the retune worker loop from spec.md §4.6.
func (e *CalculationEngine[T]) retuneWorker(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		if !e.tuneGate.Wait(e.shutdown) {
			return
		}

		p := e.params.Load()
		if !p.Freeze {
			e.binMagMu.Lock()
			e.bank.TuneOscillatorsToFFT(e.binMag[:e.binMagValid], p.Voices, e.deltaF, T(p.FrequencyOffset))
			e.binMagMu.Unlock()
		}
		e.tuneGate.MarkActionDone()
	}
}

// PeekBinMag returns a copy of the most recently published peak list,
// for diagnostics and tests; not part of the realtime path.
func (e *CalculationEngine[T]) PeekBinMag() []fft.BinMag {
	e.binMagMu.Lock()
	defer e.binMagMu.Unlock()
	out := make([]fft.BinMag, e.binMagValid)
	copy(out, e.binMag[:e.binMagValid])
	return out
}
