// Package transcript holds the timestamped-segment model and the two pure
// transforms of the diarization pipeline: re-segmentation before embedding
// and speaker-block assembly after clustering.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// TimedSegment is one timestamped piece of transcript text as produced by a
// speech-to-text engine. End is strictly greater than Start; Text may be
// empty after splitting.
type TimedSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment length in seconds.
func (s TimedSegment) Duration() float64 {
	return s.End - s.Start
}

// LoadSegments reads a JSON array of segments from path.
func LoadSegments(path string) ([]TimedSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSegments(data)
}

// ParseSegments decodes a JSON array of segments.
func ParseSegments(data []byte) ([]TimedSegment, error) {
	var segs []TimedSegment
	if err := json.Unmarshal(data, &segs); err != nil {
		return nil, fmt.Errorf("parse segments: %w", err)
	}
	for i, s := range segs {
		if s.End <= s.Start {
			return nil, fmt.Errorf("segment %d: end %.3f <= start %.3f", i, s.End, s.Start)
		}
	}
	return segs, nil
}

// JoinText returns the space-joined text of all segments.
func JoinText(segments []TimedSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// WordCount counts whitespace-separated words across all segments.
func WordCount(segments []TimedSegment) int {
	n := 0
	for _, s := range segments {
		n += len(strings.Fields(s.Text))
	}
	return n
}
