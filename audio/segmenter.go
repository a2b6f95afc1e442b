package audio

import (
	"errors"
	"time"
)

// ErrCalibration is returned when the ambient-noise threshold cannot be
// established. Capture must not start without one.
var ErrCalibration = errors.New("ambient noise calibration failed")

// SegmenterConfig tunes speech detection on a continuous PCM stream.
type SegmenterConfig struct {
	SampleRate    int
	FrameDur      time.Duration
	PauseDur      time.Duration
	MinSpeechDur  time.Duration
	MaxSegmentDur time.Duration
}

func (c SegmenterConfig) withDefaults() SegmenterConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.FrameDur <= 0 {
		c.FrameDur = 30 * time.Millisecond
	}
	if c.PauseDur <= 0 {
		c.PauseDur = 600 * time.Millisecond
	}
	if c.MinSpeechDur <= 0 {
		c.MinSpeechDur = 400 * time.Millisecond
	}
	if c.MaxSegmentDur <= 0 {
		c.MaxSegmentDur = 30 * time.Second
	}
	return c
}

// Segmenter splits a PCM frame stream into speech segments by comparing
// per-frame energy against a calibrated ambient threshold. Segments close
// after a sustained pause and are dropped when shorter than the minimum
// speech duration.
type Segmenter struct {
	cfg       SegmenterConfig
	threshold float64

	buf         []byte
	inSpeech    bool
	silence     time.Duration
	speechStart time.Time
}

// NewSegmenter returns a segmenter using the given energy threshold.
func NewSegmenter(cfg SegmenterConfig, threshold float64) *Segmenter {
	return &Segmenter{cfg: cfg.withDefaults(), threshold: threshold}
}

// FrameBytes reports the byte length of one analysis frame.
func (s *Segmenter) FrameBytes() int {
	samples := int(float64(s.cfg.SampleRate) * s.cfg.FrameDur.Seconds())
	return samples * 2
}

// Push feeds one frame of PCM. It returns a completed segment when speech
// followed by a sufficient pause has accumulated, or nil.
func (s *Segmenter) Push(frame []byte, now time.Time) *Segment {
	energy := RMS(frame)
	speaking := energy > s.threshold

	if !s.inSpeech {
		if !speaking {
			return nil
		}
		s.inSpeech = true
		s.silence = 0
		s.speechStart = now
		s.buf = append(s.buf[:0], frame...)
		return nil
	}

	s.buf = append(s.buf, frame...)
	if speaking {
		s.silence = 0
	} else {
		s.silence += s.cfg.FrameDur
	}

	dur := durationOf(len(s.buf), s.cfg.SampleRate)
	if s.silence >= s.cfg.PauseDur || dur >= s.cfg.MaxSegmentDur {
		return s.flush(dur)
	}
	return nil
}

// Flush closes any in-progress segment, returning it if long enough.
func (s *Segmenter) Flush() *Segment {
	if !s.inSpeech {
		return nil
	}
	return s.flush(durationOf(len(s.buf), s.cfg.SampleRate))
}

func (s *Segmenter) flush(dur time.Duration) *Segment {
	s.inSpeech = false
	speech := dur - s.silence
	if speech < s.cfg.MinSpeechDur {
		s.buf = s.buf[:0]
		return nil
	}
	seg := &Segment{
		PCM:        append([]byte(nil), s.buf...),
		SampleRate: s.cfg.SampleRate,
		Start:      s.speechStart,
		Duration:   dur,
	}
	s.buf = s.buf[:0]
	s.silence = 0
	return seg
}

// CalibrateThreshold derives a speech threshold from ambient-noise PCM.
// It fails when no usable audio was captured.
func CalibrateThreshold(ambient []byte) (float64, error) {
	if len(ambient) < 2 {
		return 0, ErrCalibration
	}
	noise := RMS(ambient)
	// Floor keeps very quiet rooms from tripping on breathing noise.
	threshold := noise*1.8 + 0.0075
	if threshold <= 0 {
		return 0, ErrCalibration
	}
	return threshold, nil
}
