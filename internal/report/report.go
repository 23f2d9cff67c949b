// Package report assembles the final transcription report: plain and
// diarized transcripts, audio statistics, and counts.
package report

import (
	"fmt"
	"strings"
	"time"

	"parley/internal/audio"
	"parley/internal/transcript"
)

// Report is the full result for one audio file. Diarized is nil when
// diarization was unavailable; Transcript always carries the plain text.
type Report struct {
	SourceFile    string             `json:"source_file"`
	ProcessedAt   time.Time          `json:"processed_at"`
	Engine        string             `json:"engine"`
	AudioStats    *audio.Stats       `json:"audio_stats,omitempty"`
	WordCount     int                `json:"word_count"`
	SegmentCount  int                `json:"segment_count"`
	SpeakerCount  int                `json:"speaker_count"`
	DroppedChunks int                `json:"dropped_chunks"`
	Language      string             `json:"language,omitempty"`
	LanguageConf  float64            `json:"language_confidence,omitempty"`
	Transcript    string             `json:"transcript"`
	Diarized      *transcript.Result `json:"diarized,omitempty"`
	DiarizedText  string             `json:"diarized_text,omitempty"`
}

// New builds a report from the pipeline pieces. diarized may be nil.
func New(source, engine string, segments []transcript.TimedSegment, diarized *transcript.Result, stats *audio.Stats, dropped int) *Report {
	r := &Report{
		SourceFile:    source,
		ProcessedAt:   time.Now(),
		Engine:        engine,
		AudioStats:    stats,
		WordCount:     transcript.WordCount(segments),
		SegmentCount:  len(segments),
		DroppedChunks: dropped,
		Transcript:    transcript.JoinText(segments),
	}
	if diarized != nil {
		r.Diarized = diarized
		r.DiarizedText = diarized.Render()
		r.SpeakerCount = diarized.Speakers
	}
	return r
}

// Render formats the report as readable text.
func (r *Report) Render() string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	fmt.Fprintf(&b, "%s\nTRANSCRIPTION REPORT\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Source: %s\nEngine: %s\nDate: %s\n\n", r.SourceFile, r.Engine, r.ProcessedAt.Format("2006-01-02 15:04:05"))

	if r.AudioStats != nil {
		s := r.AudioStats
		fmt.Fprintf(&b, "Audio: %.1fs, %d Hz, %d channel(s)\n", s.DurationSec, s.SampleRate, s.Channels)
		fmt.Fprintf(&b, "Loudness: %.1f dB, voice activity: %.1f%%\n\n", s.LoudnessDB, s.VoiceActivityPct)
	}

	fmt.Fprintf(&b, "Words: %d  Segments: %d", r.WordCount, r.SegmentCount)
	if r.SpeakerCount > 0 {
		fmt.Fprintf(&b, "  Speakers: %d", r.SpeakerCount)
	}
	if r.DroppedChunks > 0 {
		fmt.Fprintf(&b, "  Dropped chunks: %d", r.DroppedChunks)
	}
	if r.Language != "" {
		fmt.Fprintf(&b, "  Language: %s", r.Language)
	}
	b.WriteString("\n\n")

	if r.DiarizedText != "" {
		fmt.Fprintf(&b, "%s\n", r.DiarizedText)
	} else {
		fmt.Fprintf(&b, "%s\n", r.Transcript)
	}
	return b.String()
}
