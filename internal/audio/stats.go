package audio

import "math"

const (
	// silenceThreshold is the amplitude below which a sample counts as
	// silence for the energy gate.
	silenceThreshold = 0.01
	// rmsEpsilon keeps log10 defined on an all-zero waveform.
	rmsEpsilon = 1e-10
)

// Stats describes a waveform. Purely informational; it feeds reporting and
// never gates the pipeline.
type Stats struct {
	DurationSec      float64 `json:"duration_s"`
	SampleRate       int     `json:"sample_rate"`
	Channels         int     `json:"channel_count"`
	LoudnessDB       float64 `json:"loudness_db"`
	VoiceActivityPct float64 `json:"voice_activity_pct"`
}

// Analyze computes stats over the channel-averaged mono signal.
func Analyze(buf *Buffer) Stats {
	return Stats{
		DurationSec:      buf.DurationSec(),
		SampleRate:       buf.SampleRate,
		Channels:         buf.Channels,
		LoudnessDB:       20 * math.Log10(rms(buf.Samples)+rmsEpsilon),
		VoiceActivityPct: 100 * activityRatio(buf.Samples, buf.SampleRate),
	}
}

// AnalyzeFile decodes and analyzes path. A file that cannot be decoded
// yields nil rather than an error; stats are best-effort.
func AnalyzeFile(path string) *Stats {
	buf, err := DecodeWAV(path)
	if err != nil {
		return nil
	}
	s := Analyze(buf)
	return &s
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// energyRatio is the fraction of samples above the silence threshold. A
// crude energy gate, not a trained classifier.
func energyRatio(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	active := 0
	for _, s := range samples {
		if math.Abs(s) > silenceThreshold {
			active++
		}
	}
	return float64(active) / float64(len(samples))
}
