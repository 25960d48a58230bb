package oscillator

import (
	"github.com/doismellburning/spectralfx/fft"
	"github.com/doismellburning/spectralfx/wavetable"
)

// Waveform selects which standard table the bank's voices read from.
type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Saw
	Square
)

// Bank is a fixed-capacity array of voices plus the four standard
// wavetables they may be switched between. The capacity (V_max) is
// fixed at construction and never resized.
type Bank[T Sample] struct {
	voices                      []*Oscillator[T]
	sine, triangle, saw, square *wavetable.WaveTable[T]
	ampCorrection               T
}

// NewBank builds vMax silent voices, each W samples per wavetable
// period, sampling at sampleRate with the given glide resolution.
// ampCorrection is 2/N where N is the analysis window size, per
// spec.md §4.3.
func NewBank[T Sample](vMax, waveTableSize, fftWindowSize int, sampleRate T, glideSteps uint16) *Bank[T] {
	sine := wavetable.NewSine[T](waveTableSize)
	tri := wavetable.NewTriangle[T](waveTableSize)
	saw := wavetable.NewSaw[T](waveTableSize)
	sq := wavetable.NewSquare[T](waveTableSize)

	voices := make([]*Oscillator[T], vMax)
	for i := range voices {
		voices[i] = New[T](sampleRate, sine, glideSteps)
	}

	return &Bank[T]{
		voices:        voices,
		sine:          sine,
		triangle:      tri,
		saw:           saw,
		square:        sq,
		ampCorrection: T(2) / T(fftWindowSize),
	}
}

// Voices returns the number of voices the bank was constructed with (V_max).
func (b *Bank[T]) Voices() int { return len(b.voices) }

// VoiceFrequency returns voice i's most recently targeted frequency;
// for diagnostics and tests, not part of the realtime path.
func (b *Bank[T]) VoiceFrequency(i int) T { return b.voices[i].Frequency() }

// VoiceAmplitude returns voice i's most recently targeted amplitude;
// for diagnostics and tests, not part of the realtime path.
func (b *Bank[T]) VoiceAmplitude(i int) T { return b.voices[i].Amplitude() }

// ReceiveOutput sums Step across every voice and applies the 2/N
// amplitude correction. Called once per sample from the audio thread;
// allocation-free, lock-free, no transcendentals.
func (b *Bank[T]) ReceiveOutput() T {
	var sum T
	for _, v := range b.voices {
		sum += v.Step()
	}
	return sum * b.ampCorrection
}

// TuneOscillatorsToFFT maps the strongest voices peaks onto the first
// min(voices, V_max) oscillators; the remainder are retuned to silence
// (0 Hz, 0 amplitude) so they glide out rather than cut abruptly.
// deltaF converts a bin index to Hz (f_s/N); freqOffset is added
// before the Nyquist clamp inside TuneAndSetAmp.
func (b *Bank[T]) TuneOscillatorsToFFT(bins []fft.BinMag, voices int, deltaF, freqOffset T) {
	k := voices
	if k > len(b.voices) {
		k = len(b.voices)
	}
	if k < 0 {
		k = 0
	}
	if k > len(bins) {
		k = len(bins)
	}

	for i := 0; i < k; i++ {
		freq := T(bins[i].Index)*deltaF + freqOffset
		amp := T(bins[i].Magnitude) * b.ampCorrection
		b.voices[i].TuneAndSetAmp(freq, amp)
	}
	for i := k; i < len(b.voices); i++ {
		b.voices[i].TuneAndSetAmp(0, 0)
	}
}

// SelectWaveform atomically swaps every voice's table pointer.
func (b *Bank[T]) SelectWaveform(kind Waveform) {
	var tbl *wavetable.WaveTable[T]
	switch kind {
	case Triangle:
		tbl = b.triangle
	case Saw:
		tbl = b.saw
	case Square:
		tbl = b.square
	default:
		tbl = b.sine
	}
	for _, v := range b.voices {
		v.SelectWaveform(tbl)
	}
}

// SetSampleRate updates every voice's cached sampling frequency.
func (b *Bank[T]) SetSampleRate(fs T) {
	for _, v := range b.voices {
		v.SetSampleRate(fs)
	}
}

// SetGlideSteps updates every voice's glide resolution.
func (b *Bank[T]) SetGlideSteps(steps uint16) {
	for _, v := range b.voices {
		v.SetGlideSteps(steps)
	}
}

// Reset silences every voice immediately (no glide).
func (b *Bank[T]) Reset() {
	for _, v := range b.voices {
		v.Reset()
	}
}
