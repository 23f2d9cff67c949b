package transcript

import (
	"math"
	"strings"
)

// DefaultMaxSegmentSec caps chunk duration before embedding. Voice
// embeddings get muddy past a typical speaker turn, so longer transcript
// segments are cut down.
const DefaultMaxSegmentSec = 5.0

// Resegment splits segments longer than maxDuration into equal-length time
// windows with the word-tokenized text divided evenly across them; the last
// window absorbs remainder words. Segments at or under maxDuration pass
// through unchanged and order is preserved. A segment with no words yields
// no chunks, and a window whose word slice would start past the end of the
// text is dropped.
func Resegment(segments []TimedSegment, maxDuration float64) []TimedSegment {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxSegmentSec
	}
	out := make([]TimedSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.Duration() <= maxDuration {
			out = append(out, seg)
			continue
		}
		chunks := int(math.Ceil(seg.Duration() / maxDuration))
		words := strings.Fields(seg.Text)
		if len(words) == 0 {
			continue
		}
		perChunk := len(words) / chunks
		if perChunk < 1 {
			perChunk = 1
		}
		for i := 0; i < chunks; i++ {
			start := seg.Start + float64(i)*maxDuration
			end := math.Min(seg.Start+float64(i+1)*maxDuration, seg.End)
			lo := i * perChunk
			hi := (i + 1) * perChunk
			if i == chunks-1 {
				hi = len(words)
			}
			if lo >= len(words) {
				continue
			}
			out = append(out, TimedSegment{
				Start: start,
				End:   end,
				Text:  strings.Join(words[lo:hi], " "),
			})
		}
	}
	return out
}
