package server

import (
	"fmt"
	"strings"
	"sync/atomic"
)

type metrics struct {
	requests  atomic.Int64
	diarized  atomic.Int64
	fallbacks atomic.Int64
	dropped   atomic.Int64
}

func (m *metrics) incRequests()    { m.requests.Add(1) }
func (m *metrics) incDiarized()    { m.diarized.Add(1) }
func (m *metrics) incFallbacks()   { m.fallbacks.Add(1) }
func (m *metrics) addDropped(n int) { m.dropped.Add(int64(n)) }

func (m *metrics) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parley_requests_total %d\n", m.requests.Load())
	fmt.Fprintf(&b, "parley_diarized_total %d\n", m.diarized.Load())
	fmt.Fprintf(&b, "parley_fallbacks_total %d\n", m.fallbacks.Load())
	fmt.Fprintf(&b, "parley_dropped_chunks_total %d\n", m.dropped.Load())
	return b.String()
}
