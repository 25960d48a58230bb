package pipeline

import (
	"math"
	"sync/atomic"

	"github.com/doismellburning/spectralfx/config"
	"github.com/doismellburning/spectralfx/oscillator"
	"github.com/doismellburning/spectralfx/ring"
	"github.com/doismellburning/spectralfx/wavetable"
)

// BufferManager is the audio thread's only entry point: process_chunk
// from spec.md §4.5. It must never allocate, block, or call a
// transcendental function other than the one-pole coefficient
// recompute, which only runs when cutoff actually changes.
type BufferManager[T wavetable.Sample] struct {
	ring *ring.Buffer[T]
	bank *oscillator.Bank[T]
	gate *gate

	params *atomic.Pointer[config.FxParameters]

	sampleRate T
	wantFFT    bool
	prevOut    T
	alpha      T
	lastCutoff T
	haveAlpha  bool
}

func newBufferManager[T wavetable.Sample](
	r *ring.Buffer[T],
	bank *oscillator.Bank[T],
	calcGate *gate,
	params *atomic.Pointer[config.FxParameters],
	sampleRate T,
) *BufferManager[T] {
	return &BufferManager[T]{
		ring:       r,
		bank:       bank,
		gate:       calcGate,
		params:     params,
		sampleRate: sampleRate,
	}
}

// ProcessChunk replaces samples[0:len(samples)) in place with the
// resynthesized oscillator-bank output. Output samples always come
// from the oscillator bank: a silent bank emits zero, and the input is
// never passed through.
func (b *BufferManager[T]) ProcessChunk(samples []T) {
	p := b.params.Load()
	gain := T(p.Gain)
	feedback := T(p.Feedback)
	cutoff := T(p.FilterCutoffHz)

	if !b.haveAlpha || cutoff != b.lastCutoff {
		b.alpha = T(1 - math.Exp(-2*math.Pi*float64(cutoff)/float64(b.sampleRate)))
		b.lastCutoff = cutoff
		b.haveAlpha = true
	}

	for j := range samples {
		in := samples[j] + feedback*b.prevOut
		b.ring.FillInput(in)

		oscOut := b.bank.ReceiveOutput()
		b.prevOut = (1-b.alpha)*b.prevOut + b.alpha*oscOut*gain
		samples[j] = b.prevOut

		if b.ring.Advance() {
			b.wantFFT = true
		}
		if b.wantFFT && b.gate.ActionDone() {
			b.gate.ClearActionDone()
			b.ring.CopyToOutput()
			b.gate.Notify()
			b.wantFFT = false
		}
	}
}

// SetSampleRate updates the cached sample rate used by the LPF
// coefficient recompute; call only outside ProcessChunk.
func (b *BufferManager[T]) SetSampleRate(fs T) {
	b.sampleRate = fs
	b.haveAlpha = false
}

// Reset clears the LPF state and forces a coefficient recompute on
// the next chunk.
func (b *BufferManager[T]) Reset() {
	b.prevOut = 0
	b.wantFFT = false
	b.haveAlpha = false
}
