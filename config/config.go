// Package config holds FxParameters, the in-process parameter block a
// host publishes to the pipeline controller (spec.md §3, §6), plus a
// YAML-backed Preset used by the offline demo/bench binaries to save
// and recall named parameter sets.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/doismellburning/spectralfx/fft"
	"github.com/doismellburning/spectralfx/oscillator"
)

// FxParameters mirrors spec.md §6's recognized options, plus Feedback
// (used by BufferManager's process_chunk formula in §4.5 but left off
// the host-facing table in §6 -- likely an oversight in the
// distillation, since the formula cannot be expressed without it;
// exposed here as a host-tunable field since nothing in spec.md's
// Non-goals excludes it).
type FxParameters struct {
	Waveform         oscillator.Waveform
	FilterCutoffHz   float64
	FFTThreshold     float64
	FrequencyOffset  float64
	Gain             float64
	Feedback         float64
	GlideSteps       uint16
	Voices           int
	Freeze           bool
	ContinuousTuning bool
	TuneIntervalMs   uint16
}

// Default returns the parameter set the end-to-end scenarios in
// spec.md §8 are written against.
func Default() FxParameters {
	return FxParameters{
		Waveform:         oscillator.Sine,
		FilterCutoffHz:   8000,
		FFTThreshold:     0.01,
		FrequencyOffset:  0,
		Gain:             1,
		Feedback:         0,
		GlideSteps:       100,
		Voices:           4,
		Freeze:           false,
		ContinuousTuning: true,
		TuneIntervalMs:   100,
	}
}

func clampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamped returns a copy of p with every field clamped into its valid
// range per spec.md §6 and §7 ("every out-of-range parameter is
// clamped at ingestion"). sampleRate and vMax are needed to bound
// FilterCutoffHz and Voices respectively.
func (p FxParameters) Clamped(sampleRate float64, vMax int) FxParameters {
	c := p
	c.Gain = clampF(c.Gain, 0, 2)
	// Strictly below 1: spec.md §9 flags the source's [0,1] as
	// self-referential-loop-unstable at the boundary and requires a
	// strict clamp in the implementation.
	c.Feedback = clampF(c.Feedback, 0, math.Nextafter(1, 0))
	nyquist := sampleRate / 2
	c.FilterCutoffHz = clampF(c.FilterCutoffHz, 1, nyquist-1)
	c.FFTThreshold = math.Max(c.FFTThreshold, fft.MinGainThreshold)
	c.Voices = clampI(c.Voices, 0, vMax)
	if c.GlideSteps < 1 {
		c.GlideSteps = 1
	}
	c.TuneIntervalMs = uint16(clampI(int(c.TuneIntervalMs), 1, 5000))
	return c
}

// Preset is the YAML-serializable form of FxParameters used by the
// offline demo and bench binaries (config.FxParameters itself carries
// an enum that doesn't round-trip through YAML cleanly).
type Preset struct {
	Waveform         string  `yaml:"waveform"`
	FilterCutoffHz   float64 `yaml:"filter_cutoff_hz"`
	FFTThreshold     float64 `yaml:"fft_threshold"`
	FrequencyOffset  float64 `yaml:"frequency_offset_hz"`
	Gain             float64 `yaml:"gain"`
	Feedback         float64 `yaml:"feedback"`
	GlideSteps       uint16  `yaml:"glide_steps"`
	Voices           int     `yaml:"voices"`
	Freeze           bool    `yaml:"freeze"`
	ContinuousTuning bool    `yaml:"continuous_tuning"`
	TuneIntervalMs   uint16  `yaml:"tune_interval_ms"`
}

// ParseWaveform maps a preset's string field onto the oscillator enum.
func ParseWaveform(s string) (oscillator.Waveform, error) {
	switch s {
	case "sine", "":
		return oscillator.Sine, nil
	case "triangle":
		return oscillator.Triangle, nil
	case "saw":
		return oscillator.Saw, nil
	case "square":
		return oscillator.Square, nil
	default:
		return oscillator.Sine, fmt.Errorf("config: unknown waveform %q", s)
	}
}

// WaveformString is the inverse of ParseWaveform.
func WaveformString(w oscillator.Waveform) string {
	switch w {
	case oscillator.Triangle:
		return "triangle"
	case oscillator.Saw:
		return "saw"
	case oscillator.Square:
		return "square"
	default:
		return "sine"
	}
}

// ToParameters converts a Preset into FxParameters.
func (pr Preset) ToParameters() (FxParameters, error) {
	wf, err := ParseWaveform(pr.Waveform)
	if err != nil {
		return FxParameters{}, err
	}
	return FxParameters{
		Waveform:         wf,
		FilterCutoffHz:   pr.FilterCutoffHz,
		FFTThreshold:     pr.FFTThreshold,
		FrequencyOffset:  pr.FrequencyOffset,
		Gain:             pr.Gain,
		Feedback:         pr.Feedback,
		GlideSteps:       pr.GlideSteps,
		Voices:           pr.Voices,
		Freeze:           pr.Freeze,
		ContinuousTuning: pr.ContinuousTuning,
		TuneIntervalMs:   pr.TuneIntervalMs,
	}, nil
}

// FromParameters builds a Preset from a live FxParameters, for saving.
func FromParameters(p FxParameters) Preset {
	return Preset{
		Waveform:         WaveformString(p.Waveform),
		FilterCutoffHz:   p.FilterCutoffHz,
		FFTThreshold:     p.FFTThreshold,
		FrequencyOffset:  p.FrequencyOffset,
		Gain:             p.Gain,
		Feedback:         p.Feedback,
		GlideSteps:       p.GlideSteps,
		Voices:           p.Voices,
		Freeze:           p.Freeze,
		ContinuousTuning: p.ContinuousTuning,
		TuneIntervalMs:   p.TuneIntervalMs,
	}
}

// LoadPreset reads a named preset YAML file.
func LoadPreset(path string) (FxParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FxParameters{}, fmt.Errorf("config: reading preset: %w", err)
	}
	var pr Preset
	if err := yaml.Unmarshal(data, &pr); err != nil {
		return FxParameters{}, fmt.Errorf("config: parsing preset: %w", err)
	}
	return pr.ToParameters()
}

// SavePreset writes p to path as YAML.
func SavePreset(path string, p FxParameters) error {
	data, err := yaml.Marshal(FromParameters(p))
	if err != nil {
		return fmt.Errorf("config: encoding preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing preset: %w", err)
	}
	return nil
}
