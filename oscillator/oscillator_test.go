package oscillator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/doismellburning/spectralfx/fft"
	"github.com/doismellburning/spectralfx/wavetable"
)

const testWaveTableSize = 256

func newTestOsc(glideSteps uint16) *Oscillator[float64] {
	sine := wavetable.NewSine[float64](testWaveTableSize)
	return New[float64](44100, sine, glideSteps)
}

func TestTuneAndSetAmpConvergesWithinGlideSteps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		steps := uint16(rapid.IntRange(1, 2000).Draw(t, "steps"))
		freq := rapid.Float64Range(20, 20000).Draw(t, "freq")
		amp := rapid.Float64Range(0, 1).Draw(t, "amp")

		o := newTestOsc(steps)
		o.TuneAndSetAmp(freq, amp)

		for i := 0; i < int(steps); i++ {
			o.Step()
		}

		liveFreq := float64(o.increment) * 44100 / float64(o.internalSize)
		assert.InDelta(t, freq, liveFreq, 1e-6)
		assert.InDelta(t, amp, float64(o.amplitude), 1e-9)
	})
}

func TestStepNeverOvershootsTarget(t *testing.T) {
	o := newTestOsc(100)
	o.TuneAndSetAmp(1000, 0.5)

	for i := 0; i < 100; i++ {
		o.Step()
		assert.LessOrEqual(t, o.amplitude, 0.5+1e-12)
		assert.GreaterOrEqual(t, o.amplitude, -1e-12)
	}
}

func TestSilenceVoicesGlideToZero(t *testing.T) {
	o := newTestOsc(50)
	o.TuneAndSetAmp(440, 1.0)
	for i := 0; i < 50; i++ {
		o.Step()
	}
	assert.InDelta(t, 1.0, float64(o.amplitude), 1e-9)

	o.TuneAndSetAmp(0, 0)
	for i := 0; i < 50; i++ {
		o.Step()
	}
	assert.InDelta(t, 0.0, float64(o.amplitude), 1e-9)
}

func TestBankVoiceCapZero(t *testing.T) {
	bank := NewBank[float64](4, testWaveTableSize, 1024, 44100, 100)
	bank.TuneOscillatorsToFFT([]fft.BinMag{{Index: 10, Magnitude: 1}}, 0, 44100.0/1024, 0)
	for i := 0; i < 200; i++ {
		out := bank.ReceiveOutput()
		if i == 199 {
			assert.InDelta(t, 0.0, out, 1e-6)
		}
	}
}

func TestBankSelectWaveformSwapsAllVoices(t *testing.T) {
	bank := NewBank[float64](4, testWaveTableSize, 1024, 44100, 10)
	bank.SelectWaveform(Square)
	for _, v := range bank.voices {
		assert.Equal(t, bank.square, v.table.Load())
	}
}

func TestFrequencyClampsToNyquist(t *testing.T) {
	o := newTestOsc(1)
	o.TuneAndSetAmp(1e9, 1)
	o.Step()
	assert.InDelta(t, 44100.0/2, float64(o.Frequency()), 1e-6)
}

func TestFloorTMatchesMathFloor(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.Float64Range(-1000, 1000).Draw(t, "v")
		assert.Equal(t, math.Floor(v), floorT(v))
	})
}
