//go:build webrtcvad

package audio

import (
	vad "github.com/maxhawkins/go-webrtcvad"
)

// activityRatio classifies 20ms frames with WebRTC VAD and returns the
// voiced fraction. Rates WebRTC cannot handle (anything outside
// 8/16/32/48 kHz) fall back to the energy gate.
func activityRatio(samples []float64, sampleRate int) float64 {
	switch sampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return energyRatio(samples)
	}
	v, err := vad.New()
	if err != nil {
		return energyRatio(samples)
	}
	if err := v.SetMode(2); err != nil {
		return energyRatio(samples)
	}
	frame := sampleRate * 20 / 1000
	if !vad.ValidRateAndFrameLength(sampleRate, frame) {
		return energyRatio(samples)
	}

	buf := make([]byte, frame*2)
	voiced, total := 0, 0
	for off := 0; off+frame <= len(samples); off += frame {
		for i := 0; i < frame; i++ {
			s := samples[off+i]
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			pcm := int16(s * 32767)
			buf[2*i] = byte(pcm)
			buf[2*i+1] = byte(pcm >> 8)
		}
		active, err := v.Process(sampleRate, buf)
		if err != nil {
			continue
		}
		total++
		if active {
			voiced++
		}
	}
	if total == 0 {
		return energyRatio(samples)
	}
	return float64(voiced) / float64(total)
}
