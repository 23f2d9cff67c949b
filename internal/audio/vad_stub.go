//go:build !webrtcvad

package audio

// activityRatio falls back to the plain energy gate; build with
// '-tags webrtcvad' for frame-based WebRTC voice activity detection.
func activityRatio(samples []float64, sampleRate int) float64 {
	return energyRatio(samples)
}
