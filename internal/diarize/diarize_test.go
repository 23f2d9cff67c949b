package diarize

import (
	"context"
	"errors"
	"testing"

	"parley/internal/audio"
	"parley/internal/logging"
	"parley/internal/transcript"
)

// voiceEncoder fakes two distinct voices: segments starting before the
// split time get one direction, the rest the other.
type voiceEncoder struct {
	rate  int
	split float64
	fail  bool
}

func (v *voiceEncoder) Embed(ctx context.Context, samples []float64, rate int) ([]float64, error) {
	if v.fail {
		return nil, errors.New("encoder down")
	}
	// The extractor slices from the start of the buffer, so the slice
	// length stands in for the segment position in this fake.
	if float64(len(samples))/float64(rate) > v.split {
		return []float64{0, 1}, nil
	}
	return []float64{1, 0}, nil
}

// positionEncoder labels by segment start, tracked via call order.
type positionEncoder struct {
	vectors [][]float64
	calls   int
}

func (p *positionEncoder) Embed(ctx context.Context, samples []float64, rate int) ([]float64, error) {
	v := p.vectors[p.calls%len(p.vectors)]
	p.calls++
	return v, nil
}

func buffer(seconds float64, rate int) *audio.Buffer {
	return &audio.Buffer{Samples: make([]float64, int(seconds*float64(rate))), SampleRate: rate, Channels: 1}
}

func TestRunTwoSpeakers(t *testing.T) {
	enc := &positionEncoder{vectors: [][]float64{
		{1, 0}, {0.9, 0.1}, {0, 1},
	}}
	d := New(enc, logging.NewTestLogger())
	segs := []transcript.TimedSegment{
		{Start: 0, End: 2, Text: "bonjour"},
		{Start: 2, End: 4, Text: "comment"},
		{Start: 4, End: 6, Text: "allez vous"},
	}
	out, err := d.Run(context.Background(), buffer(6, 16000), segs, Options{Speakers: 2})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	res := out.Result
	if res == nil || len(res.Blocks) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Blocks[0].Text != "bonjour comment" {
		t.Fatalf("block 0 text = %q", res.Blocks[0].Text)
	}
	if res.Blocks[1].Text != "allez vous" {
		t.Fatalf("block 1 text = %q", res.Blocks[1].Text)
	}
	if res.Blocks[0].Speaker == res.Blocks[1].Speaker {
		t.Fatalf("blocks share speaker: %+v", res.Blocks)
	}
}

func TestRunUnavailableWithSingleUsableEmbedding(t *testing.T) {
	enc := &positionEncoder{vectors: [][]float64{{1, 0}}}
	d := New(enc, logging.NewTestLogger())
	// Only the first segment is long enough to embed.
	segs := []transcript.TimedSegment{
		{Start: 0, End: 2, Text: "seul"},
		{Start: 2, End: 2.1, Text: "court"},
	}
	out, err := d.Run(context.Background(), buffer(3, 16000), segs, Options{Speakers: 2})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if out == nil || out.Result != nil {
		t.Fatalf("expected absent result, got %+v", out)
	}
	if out.DroppedChunks != 1 {
		t.Fatalf("dropped = %d, want 1", out.DroppedChunks)
	}
}

func TestRunUnavailableWhenEncoderAlwaysFails(t *testing.T) {
	d := New(&voiceEncoder{fail: true}, logging.NewTestLogger())
	segs := []transcript.TimedSegment{
		{Start: 0, End: 2, Text: "a"},
		{Start: 2, End: 4, Text: "b"},
	}
	out, err := d.Run(context.Background(), buffer(4, 16000), segs, Options{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if out.DroppedChunks != 2 {
		t.Fatalf("dropped = %d, want 2", out.DroppedChunks)
	}
}

func TestRunResegmentsLongInput(t *testing.T) {
	enc := &positionEncoder{vectors: [][]float64{{1, 0}}}
	d := New(enc, logging.NewTestLogger())
	segs := []transcript.TimedSegment{
		{Start: 0, End: 12, Text: "un deux trois quatre cinq six"},
	}
	out, err := d.Run(context.Background(), buffer(12, 16000), segs, Options{Speakers: 1, MaxSegmentSec: 5})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if enc.calls != 3 {
		t.Fatalf("encoder called %d times, want 3 (one per chunk)", enc.calls)
	}
	if got := out.Result.Blocks[0].Text; got != "un deux trois quatre cinq six" {
		t.Fatalf("reassembled text = %q", got)
	}
}

func TestRunSpeakerTargetClamped(t *testing.T) {
	enc := &positionEncoder{vectors: [][]float64{{1, 0}, {0, 1}}}
	d := New(enc, logging.NewTestLogger())
	segs := []transcript.TimedSegment{
		{Start: 0, End: 2, Text: "a"},
		{Start: 2, End: 4, Text: "b"},
	}
	out, err := d.Run(context.Background(), buffer(4, 16000), segs, Options{Speakers: 9})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Result.Speakers > 2 {
		t.Fatalf("speakers = %d for 2 embeddings", out.Result.Speakers)
	}
}
