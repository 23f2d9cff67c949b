// Package embed extracts fixed-length voice embeddings for transcript
// chunks via an external encoder model.
package embed

import (
	"context"

	"parley/internal/audio"
	"parley/internal/transcript"

	"github.com/sirupsen/logrus"
)

// MinChunkSec is the shortest clip worth embedding; anything under it is
// skipped before reaching the encoder.
const MinChunkSec = 0.3

// Encoder turns an audio clip into a fixed-length voice embedding.
// Implementations must be safe for concurrent calls; each call is
// self-contained.
type Encoder interface {
	Embed(ctx context.Context, samples []float64, sampleRate int) ([]float64, error)
}

// Chunk pairs a transcript segment with its voice embedding.
type Chunk struct {
	Segment transcript.TimedSegment
	Vector  []float64
}

// Batch is the outcome of one extraction pass. Dropped counts segments that
// were too short or whose embedding failed; drops are recovered locally but
// kept observable.
type Batch struct {
	Chunks  []Chunk
	Dropped int
}

// Extract slices the waveform for each segment by sample index (clipped to
// bounds) and embeds the slice. A failed or too-short chunk is dropped and
// the pass continues; only context cancellation aborts the batch.
func Extract(ctx context.Context, enc Encoder, buf *audio.Buffer, segments []transcript.TimedSegment, logger *logrus.Logger) (*Batch, error) {
	batch := &Batch{}
	rate := buf.SampleRate
	minSamples := int(MinChunkSec * float64(rate))

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := int(seg.Start * float64(rate))
		end := int(seg.End * float64(rate))
		if start < 0 {
			start = 0
		}
		if end > len(buf.Samples) {
			end = len(buf.Samples)
		}
		if end-start < minSamples {
			batch.Dropped++
			logger.Debugf("embed: segment %.2f-%.2f too short, skipping", seg.Start, seg.End)
			continue
		}
		vec, err := enc.Embed(ctx, buf.Samples[start:end], rate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			batch.Dropped++
			logger.Warnf("embed: segment %.2f-%.2f failed: %v", seg.Start, seg.End, err)
			continue
		}
		batch.Chunks = append(batch.Chunks, Chunk{Segment: seg, Vector: vec})
	}
	return batch, nil
}
