// Command spectralfx-demo is a live host for the pipeline: it opens a
// PortAudio duplex stream, feeds every callback buffer through a
// pipeline.Controller, and lets the parameters be tweaked from the
// command line or a saved preset while the stream runs.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/doismellburning/spectralfx/config"
	"github.com/doismellburning/spectralfx/pipeline"
)

func main() {
	var (
		sampleRate   = pflag.Float64P("sample-rate", "r", 44100, "Sampling rate in Hz.")
		windowSize   = pflag.IntP("window", "n", 1024, "FFT/resynthesis window size, power of two.")
		waveTableSz  = pflag.IntP("wavetable-size", "w", 256, "Oscillator wavetable size, power of two.")
		maxVoices    = pflag.IntP("max-voices", "v", 16, "Maximum number of resynthesis voices.")
		voices       = pflag.Int("voices", 4, "Active voice count (<= max-voices).")
		waveform     = pflag.String("waveform", "sine", "Oscillator waveform: sine, triangle, saw, square.")
		gain         = pflag.Float64("gain", 1.0, "Output gain, 0..2.")
		feedback     = pflag.Float64("feedback", 0.0, "Output feedback, [0,1).")
		cutoff       = pflag.Float64("cutoff", 8000, "One-pole lowpass cutoff in Hz.")
		threshold    = pflag.Float64("fft-threshold", 0.01, "Minimum peak magnitude, post-normalization.")
		freqOffset   = pflag.Float64("freq-offset", 0, "Frequency offset applied to every tuned voice, Hz.")
		glideSteps   = pflag.Uint16("glide-steps", 100, "Oscillator glide resolution, in samples.")
		continuous   = pflag.Bool("continuous-tuning", true, "Retune on every analysis window instead of on a timer.")
		tuneInterval = pflag.Uint16("tune-interval-ms", 100, "Retune timer interval when continuous-tuning is off.")
		presetPath   = pflag.StringP("preset", "p", "", "Load parameters from a YAML preset file.")
		help         = pflag.Bool("help", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: spectralfx-demo [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger := log.Default()
	logger.SetPrefix("spectralfx-demo")

	params := config.Default()
	if *presetPath != "" {
		loaded, err := config.LoadPreset(*presetPath)
		if err != nil {
			logger.Fatal("loading preset", "err", err)
		}
		params = loaded
	} else {
		wf, err := config.ParseWaveform(*waveform)
		if err != nil {
			logger.Fatal("parsing waveform", "err", err)
		}
		params.Waveform = wf
		params.Gain = *gain
		params.Feedback = *feedback
		params.FilterCutoffHz = *cutoff
		params.FFTThreshold = *threshold
		params.FrequencyOffset = *freqOffset
		params.GlideSteps = *glideSteps
		params.Voices = *voices
		params.ContinuousTuning = *continuous
		params.TuneIntervalMs = *tuneInterval
	}

	ctrl, err := pipeline.New[float32](float32(*sampleRate), pipeline.Options{
		WindowSize:    *windowSize,
		WaveTableSize: *waveTableSz,
		MaxVoices:     *maxVoices,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("constructing pipeline", "err", err)
	}
	defer ctrl.Close()

	ctrl.PrepareToPlay(float32(*sampleRate))
	ctrl.UpdateParameters(params)

	if err := portaudio.Initialize(); err != nil {
		logger.Fatal("initializing portaudio", "err", err)
	}
	defer portaudio.Terminate()

	stream, err := portaudio.OpenDefaultStream(1, 1, *sampleRate, 0, func(in, out []float32) {
		copy(out, in)
		ctrl.ProcessChunk(out)
	})
	if err != nil {
		logger.Fatal("opening audio stream", "err", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		logger.Fatal("starting audio stream", "err", err)
	}
	defer stream.Stop()

	logger.Info("streaming, press ctrl-c to stop",
		"sample_rate", *sampleRate, "window", *windowSize, "voices", params.Voices,
		"waveform", config.WaveformString(params.Waveform))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")
}
