// Command spectralfx-bench drives the pipeline offline against synthetic
// test tones, timing ProcessChunk to characterize per-sample processing
// cost, and writes a timestamped text report.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"

	"github.com/doismellburning/spectralfx/config"
	"github.com/doismellburning/spectralfx/pipeline"
)

func synthesize(n int, sampleRate float64, tonesHz []float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / sampleRate
		for _, f := range tonesHz {
			out[i] += math.Sin(2 * math.Pi * f * t)
		}
	}
	return out
}

func main() {
	var (
		sampleRate  = pflag.Float64P("sample-rate", "r", 44100, "Sampling rate in Hz.")
		windowSize  = pflag.IntP("window", "n", 1024, "FFT/resynthesis window size, power of two.")
		waveTableSz = pflag.IntP("wavetable-size", "w", 256, "Oscillator wavetable size, power of two.")
		maxVoices   = pflag.IntP("max-voices", "v", 16, "Maximum number of resynthesis voices.")
		chunkSize   = pflag.Int("chunk", 256, "Samples per simulated audio callback.")
		chunks      = pflag.Int("chunks", 4000, "Number of chunks to process.")
		outDir      = pflag.StringP("out", "o", ".", "Directory to write the report file into.")
		timeFormat  = pflag.String("timestamp-format", "%Y%m%d-%H%M%S", "strftime format used for the report filename.")
		help        = pflag.Bool("help", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: spectralfx-bench [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger := log.Default()
	logger.SetPrefix("spectralfx-bench")

	ctrl, err := pipeline.New[float64](*sampleRate, pipeline.Options{
		WindowSize:    *windowSize,
		WaveTableSize: *waveTableSz,
		MaxVoices:     *maxVoices,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("constructing pipeline", "err", err)
	}
	defer ctrl.Close()

	ctrl.PrepareToPlay(*sampleRate)
	params := config.Default()
	params.Voices = *maxVoices
	ctrl.UpdateParameters(params)

	tones := []float64{220, 440, 880}
	samples := synthesize(*chunkSize**chunks, *sampleRate, tones)

	start := time.Now()
	var maxChunkDur time.Duration
	for i := 0; i < *chunks; i++ {
		lo := i * *chunkSize
		hi := lo + *chunkSize
		if hi > len(samples) {
			hi = len(samples)
		}
		chunkStart := time.Now()
		ctrl.ProcessChunk(samples[lo:hi])
		if d := time.Since(chunkStart); d > maxChunkDur {
			maxChunkDur = d
		}
	}
	elapsed := time.Since(start)

	totalSamples := *chunkSize * *chunks
	audioSeconds := float64(totalSamples) / *sampleRate
	realtimeFactor := audioSeconds / elapsed.Seconds()

	formattedTime, err := strftime.Format(*timeFormat, time.Now())
	if err != nil {
		logger.Fatal("formatting report timestamp", "err", err)
	}
	reportPath := filepath.Join(*outDir, fmt.Sprintf("spectralfx-bench-%s.txt", formattedTime))

	report := fmt.Sprintf(
		"spectralfx-bench report\n"+
			"sample_rate=%.0f window=%d wavetable=%d max_voices=%d\n"+
			"chunk_size=%d chunks=%d total_samples=%d\n"+
			"wall_time=%s audio_time=%.3fs realtime_factor=%.2fx\n"+
			"max_chunk_duration=%s\n"+
			"test_tones_hz=%v\n",
		*sampleRate, *windowSize, *waveTableSz, *maxVoices,
		*chunkSize, *chunks, totalSamples,
		elapsed, audioSeconds, realtimeFactor,
		maxChunkDur,
		tones,
	)

	if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
		logger.Fatal("writing report", "err", err)
	}

	logger.Info("benchmark complete", "report", reportPath, "realtime_factor", realtimeFactor)
	fmt.Print(report)
}
