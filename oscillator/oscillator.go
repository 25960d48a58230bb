// Package oscillator implements the wavetable voice and the fixed-size
// voice bank that the analysis thread retunes and the audio thread
// sums every sample.
package oscillator

import (
	"math"
	"sync/atomic"

	"github.com/doismellburning/spectralfx/wavetable"
)

// Sample mirrors wavetable.Sample; kept distinct so this package does
// not force callers to import wavetable just to name the constraint.
type Sample = wavetable.Sample

// glideParams is the analysis-thread-published, audio-thread-read
// block described in spec.md §9's sequence-locked alternative: rather
// than six separate atomics (which could tear mid-read if the audio
// thread observed, say, a new deltaInc with the old limits), the
// retune worker publishes one immutable struct per tune call via a
// single atomic.Pointer swap.
type glideParams[T Sample] struct {
	deltaInc, limLoInc, limHiInc T
	deltaAmp, limLoAmp, limHiAmp T
}

// Oscillator is one wavetable voice: a fractional phase index driven
// by the audio thread, and glide parameters published by the analysis
// thread. Step must never allocate or block.
type Oscillator[T Sample] struct {
	// audio-thread-owned; touched only by Step.
	phase     T
	increment T
	amplitude T

	// published by the analysis thread, read once per Step.
	params atomic.Pointer[glideParams[T]]
	table  atomic.Pointer[wavetable.WaveTable[T]]

	// analysis-thread-owned bookkeeping; only TuneAndSetAmp touches these.
	incPrev, ampPrev T

	internalSize  T // W - 1
	sampleRate    T
	nyquist       T
	invSampleRate T
	glideSteps    atomic.Uint32
}

// New creates a silent oscillator reading from table, sampling at
// sampleRate, gliding over glideSteps samples per retune.
func New[T Sample](sampleRate T, table *wavetable.WaveTable[T], glideSteps uint16) *Oscillator[T] {
	o := &Oscillator[T]{
		internalSize:  T(table.Len() - 1),
		sampleRate:    sampleRate,
		nyquist:       sampleRate / 2,
		invSampleRate: 1 / sampleRate,
	}
	o.table.Store(table)
	o.params.Store(&glideParams[T]{})
	o.glideSteps.Store(uint32(clampGlideSteps(glideSteps)))
	return o
}

func clampGlideSteps(steps uint16) uint16 {
	if steps < 1 {
		return 1
	}
	return steps
}

// SetSampleRate updates the cached sampling frequency and its
// derivatives; call only outside the audio callback (PrepareToPlay).
func (o *Oscillator[T]) SetSampleRate(fs T) {
	o.sampleRate = fs
	o.nyquist = fs / 2
	o.invSampleRate = 1 / fs
}

// SetGlideSteps updates the glide resolution used by the next
// TuneAndSetAmp call.
func (o *Oscillator[T]) SetGlideSteps(steps uint16) {
	o.glideSteps.Store(uint32(clampGlideSteps(steps)))
}

// SelectWaveform atomically swaps the table this oscillator reads
// from. Safe from any thread: Step dereferences the pointer once per
// call and both tables share length W and the end/begin invariant.
func (o *Oscillator[T]) SelectWaveform(table *wavetable.WaveTable[T]) {
	o.table.Store(table)
}

// Reset zeros phase, increment, and amplitude, and clears the
// published glide target. Not safe to call concurrently with Step.
func (o *Oscillator[T]) Reset() {
	o.phase = 0
	o.increment = 0
	o.amplitude = 0
	o.incPrev = 0
	o.ampPrev = 0
	o.params.Store(&glideParams[T]{})
}

func clampT[T Sample](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorT[T Sample](v T) T {
	return T(math.Floor(float64(v)))
}

// Step advances the oscillator by one sample and returns its output.
// Allocation-free, lock-free, and calls no transcendental functions.
func (o *Oscillator[T]) Step() T {
	idx := int(floorT(o.phase))
	tbl := o.table.Load()
	a := tbl.AtUnchecked(idx)
	b := tbl.AtUnchecked(idx + 1)
	frac := o.phase - T(idx)
	out := a + frac*(b-a)

	o.phase += o.increment
	if o.phase >= o.internalSize {
		o.phase -= o.internalSize
	}

	p := o.params.Load()
	o.increment = clampT(o.increment+p.deltaInc, p.limLoInc, p.limHiInc)
	o.amplitude = clampT(o.amplitude+p.deltaAmp, p.limLoAmp, p.limHiAmp)

	return out * o.amplitude
}

// TuneAndSetAmp retunes the oscillator toward frequency f (Hz) and
// amplitude amp, gliding linearly over the configured glide-step
// count. Called only from the analysis thread.
func (o *Oscillator[T]) TuneAndSetAmp(f, amp T) {
	fTarget := clampT(f, 0, o.nyquist)
	incTarget := o.internalSize * fTarget * o.invSampleRate

	steps := T(o.glideSteps.Load())
	deltaInc := (incTarget - o.incPrev) / steps
	deltaAmp := (amp - o.ampPrev) / steps

	prev := o.params.Load()
	next := &glideParams[T]{deltaInc: deltaInc, deltaAmp: deltaAmp}

	if incTarget > o.incPrev {
		next.limHiInc = incTarget
		next.limLoInc = prev.limLoInc
	} else {
		next.limLoInc = incTarget
		next.limHiInc = prev.limHiInc
	}
	if amp > o.ampPrev {
		next.limHiAmp = amp
		next.limLoAmp = prev.limLoAmp
	} else {
		next.limLoAmp = amp
		next.limHiAmp = prev.limHiAmp
	}

	o.params.Store(next)
	o.incPrev = incTarget
	o.ampPrev = amp
}

// Frequency returns the most recently targeted frequency in Hz,
// derived from the increment target (not the live, still-gliding
// increment), useful for freeze-mode introspection and tests.
func (o *Oscillator[T]) Frequency() T {
	return o.incPrev * o.sampleRate / o.internalSize
}

// Amplitude returns the most recently targeted amplitude.
func (o *Oscillator[T]) Amplitude() T {
	return o.ampPrev
}
