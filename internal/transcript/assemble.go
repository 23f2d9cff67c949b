package transcript

import (
	"fmt"
	"strings"
)

// LabeledSegment is a transcript segment attributed to a speaker cluster.
type LabeledSegment struct {
	TimedSegment
	Speaker int `json:"speaker"`
}

// Block is one speaker turn: the space-joined text of consecutive
// same-speaker segments.
type Block struct {
	Speaker int    `json:"speaker"`
	Text    string `json:"text"`
}

// Result is an ordered speaker-labeled transcript. Adjacent blocks never
// share a speaker id. Speaker ids are cluster labels with no identity
// across runs: speaker 0 here need not be speaker 0 in another run over
// the same audio.
type Result struct {
	Blocks   []Block `json:"blocks"`
	Speakers int     `json:"speakers"`
}

// Assemble walks segments in order and merges consecutive same-speaker text
// into blocks. Returns nil for empty input; callers surface the plain
// transcript instead.
func Assemble(segments []LabeledSegment) *Result {
	if len(segments) == 0 {
		return nil
	}
	var blocks []Block
	current := segments[0].Speaker
	texts := []string{segments[0].Text}
	for _, seg := range segments[1:] {
		if seg.Speaker == current {
			texts = append(texts, seg.Text)
			continue
		}
		blocks = append(blocks, Block{Speaker: current, Text: strings.Join(texts, " ")})
		current = seg.Speaker
		texts = []string{seg.Text}
	}
	blocks = append(blocks, Block{Speaker: current, Text: strings.Join(texts, " ")})

	seen := map[int]bool{}
	for _, b := range blocks {
		seen[b.Speaker] = true
	}
	return &Result{Blocks: blocks, Speakers: len(seen)}
}

// Render formats the result as "[Speaker N] text" blocks separated by
// blank lines.
func (r *Result) Render() string {
	lines := make([]string, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		lines = append(lines, fmt.Sprintf("[Speaker %d] %s", b.Speaker, b.Text))
	}
	return strings.Join(lines, "\n\n")
}
