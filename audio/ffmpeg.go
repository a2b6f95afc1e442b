package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// CaptureConfig describes a microphone capture session.
type CaptureConfig struct {
	FFMPEGBin    string
	DeviceIndex  int
	SampleRate   int
	CalibrateSec float64
	Segmenter    SegmenterConfig
}

// DeviceSource captures microphone audio through an ffmpeg subprocess
// emitting s16le mono PCM, calibrates against ambient noise, then streams
// detected speech segments.
type DeviceSource struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	out    chan Segment

	mu  sync.Mutex
	err error

	stopOnce sync.Once
}

// NewDeviceSource starts capture. Ambient calibration runs synchronously
// before any segment is emitted; calibration failure aborts the source.
func NewDeviceSource(cfg CaptureConfig) (*DeviceSource, error) {
	if cfg.FFMPEGBin == "" {
		cfg.FFMPEGBin = "ffmpeg"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.CalibrateSec <= 0 {
		cfg.CalibrateSec = 2.0
	}
	cfg.Segmenter.SampleRate = cfg.SampleRate

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, cfg.FFMPEGBin, captureArgs(cfg)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", cfg.FFMPEGBin, err)
	}

	s := &DeviceSource{
		cmd:    cmd,
		cancel: cancel,
		out:    make(chan Segment, 8),
	}

	ambientBytes := int(cfg.CalibrateSec*float64(cfg.SampleRate)) * 2
	ambient := make([]byte, ambientBytes)
	if _, err := io.ReadFull(stdout, ambient); err != nil {
		s.Stop()
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: %v", ErrCalibration, err)
	}
	threshold, err := CalibrateThreshold(ambient)
	if err != nil {
		s.Stop()
		_ = cmd.Wait()
		return nil, err
	}
	log.Printf("capture calibrated: ambient_rms=%.4f threshold=%.4f", RMS(ambient), threshold)

	go s.run(stdout, NewSegmenter(cfg.Segmenter, threshold))
	return s, nil
}

func captureArgs(cfg CaptureConfig) []string {
	var input []string
	switch runtime.GOOS {
	case "darwin":
		dev := "default"
		if cfg.DeviceIndex >= 0 {
			dev = strconv.Itoa(cfg.DeviceIndex)
		}
		input = []string{"-f", "avfoundation", "-i", ":" + dev}
	default:
		dev := "default"
		if cfg.DeviceIndex >= 0 {
			dev = strconv.Itoa(cfg.DeviceIndex)
		}
		input = []string{"-f", "pulse", "-i", dev}
	}
	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, input...)
	args = append(args,
		"-ac", "1",
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	)
	return args
}

func (s *DeviceSource) run(r io.Reader, seg *Segmenter) {
	defer close(s.out)
	defer func() { _ = s.cmd.Wait() }()

	frame := make([]byte, seg.FrameBytes())
	for {
		if _, err := io.ReadFull(r, frame); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				s.setErr(fmt.Errorf("capture read: %w", err))
			}
			if final := seg.Flush(); final != nil {
				s.out <- *final
			}
			return
		}
		if done := seg.Push(frame, time.Now()); done != nil {
			s.out <- *done
		}
	}
}

// Segments returns the stream of detected speech segments.
func (s *DeviceSource) Segments() <-chan Segment { return s.out }

// Stop terminates the capture subprocess. Safe to call more than once.
func (s *DeviceSource) Stop() {
	s.stopOnce.Do(s.cancel)
}

// Err reports the terminal capture error, if any, after Segments closes.
func (s *DeviceSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *DeviceSource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// DecodeFile converts a recorded audio file to one s16le mono segment via
// ffmpeg. Used for batch ingest of dropped recordings.
func DecodeFile(ctx context.Context, ffmpegBin, path string, sampleRate int) (Segment, error) {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	cmd := exec.CommandContext(ctx, ffmpegBin,
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "s16le",
		"-",
	)
	pcm, err := cmd.Output()
	if err != nil {
		return Segment{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(pcm) == 0 {
		return Segment{}, fmt.Errorf("decode %s: empty output", path)
	}
	return Segment{
		PCM:        pcm,
		SampleRate: sampleRate,
		Start:      time.Now(),
		Duration:   durationOf(len(pcm), sampleRate),
	}, nil
}
