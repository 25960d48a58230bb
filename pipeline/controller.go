// Package pipeline wires the audio path, the analysis path, and the
// retuning path into the single concurrent pipeline spec.md §1
// describes: a BufferManager driven by the host's audio callback, a
// CalculationEngine running an FFT worker and a retune worker, and an
// optional TriggerManager, all owned by one Controller that exposes
// the four host-facing operations of spec.md §6.
package pipeline

import (
	"fmt"
	"math/bits"
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

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Controller is the single owning container for the oscillator bank,
// the ring buffer, and the sync primitives shared across the audio,
// FFT, retune, and trigger threads (spec.md §9's "privileged
// construction seam" note: one module owns the shared state and hands
// non-owning references to each worker's closure; Close joins every
// worker before the container's state is released).
type Controller[T wavetable.Sample] struct {
	log *log.Logger

	n    int
	w    int
	vMax int

	ring *ring.Buffer[T]
	bank *oscillator.Bank[T]

	sampleRate T
	params     atomic.Pointer[config.FxParameters]

	bufMgr  *BufferManager[T]
	calcEng *CalculationEngine[T]
	trigger *TriggerManager

	calcGate *gate
	tuneGate *gate

	shutdown   atomic.Bool
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// Options configures construction-time constants that spec.md treats
// as compile-time constants (N, W, V_max) plus the logger to use.
type Options struct {
	WindowSize    int // N, the FFT window size, power of two.
	WaveTableSize int // W, power of two.
	MaxVoices     int // V_max.
	Logger        *log.Logger
}

// New constructs a Controller and starts its worker goroutines. This
// is the only operation that can fail (spec.md §7): N, W must be
// powers of two and MaxVoices must be positive, checked here because
// Go offers no compile-time power-of-two assertion. A goroutine
// "failing to spawn" -- the other fatal condition spec.md names -- is
// not a condition Go programs can observe, so it is not modeled.
func New[T wavetable.Sample](sampleRate T, opts Options) (*Controller[T], error) {
	if !isPowerOfTwo(opts.WindowSize) {
		return nil, fmt.Errorf("pipeline: window size %d is not a power of two", opts.WindowSize)
	}
	if !isPowerOfTwo(opts.WaveTableSize) {
		return nil, fmt.Errorf("pipeline: wavetable size %d is not a power of two", opts.WaveTableSize)
	}
	if opts.MaxVoices <= 0 {
		return nil, fmt.Errorf("pipeline: max voices must be positive, got %d", opts.MaxVoices)
	}
	if bits.Len(uint(opts.WindowSize))-1 >= twiddle.Stages+1 {
		return nil, fmt.Errorf("pipeline: window size %d exceeds the twiddle LUT's %d stages", opts.WindowSize, twiddle.Stages)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	hann := wavetable.NewHann[T](opts.WindowSize)
	compensation := T(wavetable.WindowCompensation("hann"))
	rb := ring.New[T](opts.WindowSize, hann, compensation)
	bank := oscillator.NewBank[T](opts.MaxVoices, opts.WaveTableSize, opts.WindowSize, sampleRate, config.Default().GlideSteps)
	lut := twiddle.New()

	c := &Controller[T]{
		log:        logger,
		n:          opts.WindowSize,
		w:          opts.WaveTableSize,
		vMax:       opts.MaxVoices,
		ring:       rb,
		bank:       bank,
		sampleRate: sampleRate,
		calcGate:   newGate(),
		tuneGate:   newGate(),
		shutdownCh: make(chan struct{}),
	}
	c.params.Store(defaultParams())

	c.bufMgr = newBufferManager[T](rb, bank, c.calcGate, &c.params, sampleRate)
	c.calcEng = newCalculationEngine[T](rb, bank, lut, c.calcGate, c.tuneGate, &c.params, sampleRate, opts.WindowSize, &c.shutdown, logger)
	c.trigger = newTriggerManager(c.tuneGate, &c.params, c.shutdownCh)

	c.wg.Add(3)
	go c.calcEng.fftWorker(&c.wg)
	go c.calcEng.retuneWorker(&c.wg)
	go c.trigger.worker(&c.wg)

	logger.Info("pipeline controller started", "n", opts.WindowSize, "w", opts.WaveTableSize, "v_max", opts.MaxVoices)
	return c, nil
}

func defaultParams() *config.FxParameters {
	p := config.Default()
	return &p
}

// PrepareToPlay sets the sampling frequency, clears every buffer, and
// zeros oscillator phases. Precondition: not in a callback.
func (c *Controller[T]) PrepareToPlay(sampleRate T) {
	c.sampleRate = sampleRate
	c.ring.Clear()
	c.bank.SetSampleRate(sampleRate)
	c.bank.Reset()
	c.bufMgr.SetSampleRate(sampleRate)
	c.bufMgr.Reset()
	c.calcGate.MarkActionDone()
	c.log.Info("prepared to play", "sample_rate", sampleRate)
}

// UpdateParameters applies every field of p, clamping as described in
// spec.md §6/§7, and publishes the clamped snapshot for the workers to
// observe on their next iteration.
func (c *Controller[T]) UpdateParameters(p config.FxParameters) {
	clamped := p.Clamped(float64(c.sampleRate), c.vMax)
	c.params.Store(&clamped)
	c.bank.SetGlideSteps(clamped.GlideSteps)
	c.bank.SelectWaveform(clamped.Waveform)
	c.log.Debug("parameters updated",
		"waveform", clamped.Waveform,
		"voices", clamped.Voices,
		"continuous_tuning", clamped.ContinuousTuning,
	)
}

// ProcessChunk replaces samples[0:len(samples)) in place. Must run on
// the audio thread.
func (c *Controller[T]) ProcessChunk(samples []T) {
	c.bufMgr.ProcessChunk(samples)
}

// Reset clears the ring, resets the oscillator bank to silence, and
// resets the LPF state. Precondition: not in a callback.
func (c *Controller[T]) Reset() {
	c.ring.Clear()
	c.bank.Reset()
	c.bufMgr.Reset()
	c.log.Info("pipeline reset")
}

// PeekBinMag exposes the most recently published peak list, for
// diagnostics and tests; not part of the host-facing contract.
func (c *Controller[T]) PeekBinMag() []fft.BinMag {
	return c.calcEng.PeekBinMag()
}

// VoiceFrequency exposes voice i's most recently targeted frequency,
// for diagnostics and tests; not part of the host-facing contract.
func (c *Controller[T]) VoiceFrequency(i int) T {
	return c.bank.VoiceFrequency(i)
}

// Close signals every worker to exit and joins them, mirroring the
// destructor semantics of spec.md §5: set stop_workers, notify_all,
// join. Safe to call more than once.
func (c *Controller[T]) Close() {
	c.closeOnce.Do(func() {
		c.shutdown.Store(true)
		close(c.shutdownCh)
		c.calcGate.Broadcast()
		c.tuneGate.Broadcast()
		c.wg.Wait()
		c.log.Info("pipeline controller stopped")
	})
}
