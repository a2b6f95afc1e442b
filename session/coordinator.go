// Package session runs the live coordinator: capture feeding the
// utterance log, a summarize ticker, a render ticker, and graceful
// shutdown with a final summary and persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"meetscribe/audio"
	"meetscribe/dashboard"
	"meetscribe/metrics"
	"meetscribe/recognize"
	"meetscribe/store"
	"meetscribe/summarize"
	"meetscribe/transcript"
)

// Options wires the coordinator's collaborators.
type Options struct {
	Language          string
	SummarizeInterval time.Duration
	RenderInterval    time.Duration
	OutputDir         string
	FFMPEGBin         string
	SampleRate        int

	Source     audio.Source
	Pool       *recognize.Pool
	Log        *transcript.Log
	Summarizer *summarize.Summarizer
	Store      *store.Store
	Metrics    *metrics.Metrics
	Out        io.Writer
}

// Coordinator owns one live capture session.
type Coordinator struct {
	opts Options
	id   string

	state        atomic.Int32
	summaryCache atomic.Pointer[summarize.Document]
	llmUsed      atomic.Bool
	summarizing  atomic.Bool

	noticeMu sync.Mutex
	notice   string

	startedAt time.Time
}

// New builds a coordinator. Out defaults to stdout.
func New(opts Options) *Coordinator {
	if opts.SummarizeInterval <= 0 {
		opts.SummarizeInterval = 30 * time.Second
	}
	if opts.RenderInterval <= 0 {
		opts.RenderInterval = 600 * time.Millisecond
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	c := &Coordinator{opts: opts, id: uuid.NewString()}
	c.state.Store(int32(StateInitializing))
	return c
}

// ID returns the session identifier.
func (c *Coordinator) ID() string { return c.id }

// State returns the current lifecycle phase.
func (c *Coordinator) State() State { return State(c.state.Load()) }

// Summary returns the latest cached summary document, or nil before the
// first pass completes.
func (c *Coordinator) Summary() *summarize.Document { return c.summaryCache.Load() }

// Run drives the session until ctx is cancelled, then shuts down:
// capture stops, in-flight recognitions drain, a final summary runs, and
// the session is persisted. Run returns after persistence.
func (c *Coordinator) Run(ctx context.Context) error {
	c.startedAt = time.Now()
	c.opts.Log.Start(c.startedAt)
	c.state.Store(int32(StateListening))
	log.Printf("session %s listening language=%s", c.id, c.opts.Language)

	captureDone := make(chan struct{})
	go c.captureLoop(ctx, captureDone)

	summarizeTick := time.NewTicker(c.opts.SummarizeInterval)
	defer summarizeTick.Stop()
	renderTick := time.NewTicker(c.opts.RenderInterval)
	defer renderTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.shutdown(captureDone)
		case <-captureDone:
			if err := c.opts.Source.Err(); err != nil {
				log.Printf("capture ended: %v", err)
			}
			return c.shutdown(nil)
		case <-summarizeTick.C:
			c.kickSummarize()
		case <-renderTick.C:
			c.render()
		}
	}
}

func (c *Coordinator) captureLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for seg := range c.opts.Source.Segments() {
		seg := seg
		go c.recognizeSegment(ctx, seg)
	}
}

func (c *Coordinator) recognizeSegment(ctx context.Context, seg audio.Segment) {
	text, err := c.opts.Pool.Recognize(ctx, seg, c.opts.Language)
	if err != nil {
		if errors.Is(err, recognize.ErrUnintelligible) {
			c.opts.Metrics.RecordUnintelligible()
			return
		}
		var svcErr *recognize.ServiceError
		if errors.As(err, &svcErr) {
			c.opts.Metrics.RecordServiceError()
			c.setNotice(fmt.Sprintf("[ข้อผิดพลาดเชื่อมต่อ: %v]", svcErr.Err))
			return
		}
		log.Printf("recognize: %v", err)
		return
	}
	if c.State() >= StateShuttingDown {
		return
	}
	if c.opts.Log.Append(text) {
		c.opts.Metrics.RecordRecognized()
		c.clearNotice()
	}
}

// IngestFile transcribes a dropped recording and merges it into the log.
func (c *Coordinator) IngestFile(ctx context.Context, path string) error {
	seg, err := audio.DecodeFile(ctx, c.opts.FFMPEGBin, path, c.opts.SampleRate)
	if err != nil {
		return err
	}
	text, err := c.opts.Pool.Recognize(ctx, seg, c.opts.Language)
	if err != nil {
		if errors.Is(err, recognize.ErrUnintelligible) {
			c.opts.Metrics.RecordUnintelligible()
			return nil
		}
		return err
	}
	if c.State() >= StateShuttingDown {
		return nil
	}
	if c.opts.Log.Append(text) {
		c.opts.Metrics.RecordIngestedFile()
	}
	return nil
}

// kickSummarize starts a summarize pass unless one is already running.
// The pass runs off the ticker goroutine so rendering never stalls.
func (c *Coordinator) kickSummarize() {
	if !c.summarizing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.summarizing.Store(false)
		prev := c.State()
		if prev != StateListening {
			return
		}
		c.state.CompareAndSwap(int32(StateListening), int32(StateSummarizing))
		c.runSummarizePass(context.Background())
		c.state.CompareAndSwap(int32(StateSummarizing), int32(StateListening))
	}()
}

func (c *Coordinator) runSummarizePass(ctx context.Context) {
	entries := c.opts.Log.Snapshot()
	doc, usedLLM := c.opts.Summarizer.Summarize(ctx, entries)
	c.summaryCache.Store(&doc)
	c.llmUsed.Store(usedLLM)
	c.opts.Metrics.RecordSummaryPass(c.opts.Summarizer.LLMEnabled() && !usedLLM)
}

func (c *Coordinator) render() {
	c.noticeMu.Lock()
	notice := c.notice
	c.noticeMu.Unlock()

	frame := dashboard.Render(dashboard.State{
		SessionState: c.State().String(),
		Language:     c.opts.Language,
		Recent:       c.opts.Log.Recent(),
		Notice:       notice,
		Summary:      c.summaryCache.Load(),
		UtteranceLen: c.opts.Log.Len(),
		LLMActive:    c.llmUsed.Load(),
	})
	fmt.Fprint(c.opts.Out, "\033[2J\033[H"+frame)
}

func (c *Coordinator) shutdown(captureDone chan struct{}) error {
	c.state.Store(int32(StateShuttingDown))
	log.Printf("session %s shutting down", c.id)

	// Stop is best-effort: in-flight recognitions are not drained, and
	// their results are dropped on arrival.
	c.opts.Source.Stop()
	if captureDone != nil {
		select {
		case <-captureDone:
		case <-time.After(5 * time.Second):
			log.Printf("capture stop timed out")
		}
	}

	finalCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c.runSummarizePass(finalCtx)

	entries := c.opts.Log.Snapshot()
	doc := *c.summaryCache.Load()
	baseName := "meeting_" + c.startedAt.Format("20060102_150405")

	var firstErr error
	if paths, err := store.WriteArtifacts(c.opts.OutputDir, baseName, entries, doc); err != nil {
		firstErr = err
		log.Printf("write artifacts: %v", err)
	} else {
		log.Printf("saved transcript=%s summary=%s", paths.Transcript, paths.SummaryJSON)
	}
	if c.opts.Store != nil {
		sess := store.Session{
			ID:        c.id,
			Language:  c.opts.Language,
			StartedAt: c.startedAt,
			EndedAt:   time.Now(),
			LLMUsed:   c.llmUsed.Load(),
		}
		if err := c.opts.Store.SaveSession(sess, entries, doc); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.Printf("save session: %v", err)
		}
	}

	c.state.Store(int32(StateTerminated))
	log.Printf("session %s terminated utterances=%d", c.id, len(entries))
	return firstErr
}

func (c *Coordinator) setNotice(text string) {
	c.noticeMu.Lock()
	c.notice = text
	c.noticeMu.Unlock()
}

func (c *Coordinator) clearNotice() {
	c.noticeMu.Lock()
	c.notice = ""
	c.noticeMu.Unlock()
}
