package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Segment is a bounded chunk of speech: signed 16-bit little-endian mono PCM.
type Segment struct {
	PCM        []byte
	SampleRate int
	Start      time.Time
	Duration   time.Duration
}

// RMS computes the root-mean-square amplitude of s16le PCM bytes,
// normalized to [0, 1].
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		f := float64(v) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(n))
}

// durationOf reports the play time of a PCM byte count at the given rate.
func durationOf(byteLen, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := byteLen / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
