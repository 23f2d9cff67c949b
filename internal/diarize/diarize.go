// Package diarize runs the speaker-diarization pipeline: re-segment the
// transcript, embed each chunk, cluster embeddings into speakers, and
// assemble a speaker-labeled transcript.
package diarize

import (
	"context"
	"errors"

	"parley/internal/audio"
	"parley/internal/cluster"
	"parley/internal/embed"
	"parley/internal/transcript"

	"github.com/sirupsen/logrus"
)

// ErrUnavailable reports that diarization could not run for this audio,
// usually because fewer than two usable embeddings survived extraction.
// Callers fall back to the plain transcript; this is never fatal to the
// overall request.
var ErrUnavailable = errors.New("diarization unavailable")

// Options tunes one run.
type Options struct {
	// Speakers is the target speaker count; values < 1 use the default.
	Speakers int
	// MaxSegmentSec caps chunk duration before embedding; values <= 0 use
	// the default.
	MaxSegmentSec float64
}

// Outcome is the result of one run.
type Outcome struct {
	Result *transcript.Result
	// DroppedChunks counts segments lost to the minimum-duration filter or
	// embedding failures.
	DroppedChunks int
}

// Diarizer runs the pipeline with an injected voice encoder. It keeps no
// per-run state and may serve concurrent runs as long as the encoder
// tolerates concurrent calls.
//
// Speaker labels are cluster ids with no identity across runs: two runs
// over the same audio may number the same voice differently.
type Diarizer struct {
	enc    embed.Encoder
	logger *logrus.Logger
}

// New builds a Diarizer around enc.
func New(enc embed.Encoder, logger *logrus.Logger) *Diarizer {
	return &Diarizer{enc: enc, logger: logger}
}

// Run diarizes segments against the decoded waveform. Returns
// ErrUnavailable when there is not enough usable audio to cluster; any
// other error is a real failure (cancellation, unreadable input).
func (d *Diarizer) Run(ctx context.Context, buf *audio.Buffer, segments []transcript.TimedSegment, opts Options) (*Outcome, error) {
	if opts.Speakers < 1 {
		opts.Speakers = 2
	}
	if opts.MaxSegmentSec <= 0 {
		opts.MaxSegmentSec = transcript.DefaultMaxSegmentSec
	}

	chunks := transcript.Resegment(segments, opts.MaxSegmentSec)
	d.logger.Debugf("diarize: %d segments re-segmented into %d chunks", len(segments), len(chunks))

	batch, err := embed.Extract(ctx, d.enc, buf, chunks, d.logger)
	if err != nil {
		return nil, err
	}
	if len(batch.Chunks) < 2 {
		d.logger.Infof("diarize: only %d usable embeddings (%d dropped), falling back", len(batch.Chunks), batch.Dropped)
		return &Outcome{DroppedChunks: batch.Dropped}, ErrUnavailable
	}

	vectors := make([][]float64, len(batch.Chunks))
	for i, c := range batch.Chunks {
		vectors[i] = c.Vector
	}
	labels, err := cluster.Agglomerative(vectors, opts.Speakers)
	if err != nil {
		// Clustering failures degrade to an undiarized transcript.
		d.logger.Warnf("diarize: clustering failed: %v", err)
		return &Outcome{DroppedChunks: batch.Dropped}, ErrUnavailable
	}

	labeled := make([]transcript.LabeledSegment, len(batch.Chunks))
	for i, c := range batch.Chunks {
		labeled[i] = transcript.LabeledSegment{TimedSegment: c.Segment, Speaker: labels[i]}
	}
	return &Outcome{
		Result:        transcript.Assemble(labeled),
		DroppedChunks: batch.Dropped,
	}, nil
}
