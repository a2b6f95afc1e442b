package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetscribe/audio"
	"meetscribe/config"
	"meetscribe/metrics"
	"meetscribe/queue"
	"meetscribe/recognize"
	"meetscribe/session"
	"meetscribe/store"
	"meetscribe/summarize"
	"meetscribe/transcript"
	"meetscribe/watch"
)

func main() {
	listMics := flag.Bool("list-mics", false, "list capture devices and exit")
	language := flag.String("language", "", "recognition language code (e.g. th-TH)")
	mic := flag.Int("mic", -2, "capture device index (-1 for system default)")
	summarizeInterval := flag.Int("summarize-interval", 0, "seconds between summary passes")
	flag.Parse()

	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *language != "" {
		cfg.Language = *language
	}
	if *mic >= -1 {
		cfg.DeviceIndex = *mic
	}
	if *summarizeInterval > 0 {
		cfg.SummarizeIntervalSec = *summarizeInterval
	}

	if *listMics {
		devices, err := audio.ListDevices(cfg.FFMPEGBin)
		if err != nil {
			log.Fatalf("list devices: %v", err)
		}
		for _, d := range devices {
			fmt.Println(d)
		}
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("run: %v", err)
	}
}

func run(cfg config.Config) error {
	rules, err := summarize.CompileRules(cfg.Triggers)
	if err != nil {
		return fmt.Errorf("triggers: %w", err)
	}

	pool, err := recognize.NewPool(cfg.PoolSize, func() recognize.Recognizer {
		return recognize.NewGoogleRecognizer(cfg.SpeechAPIKey)
	})
	if err != nil {
		return fmt.Errorf("recognizer pool: %w", err)
	}

	var llm *summarize.LLMClient
	if cfg.LLM.Enabled && cfg.LLM.APIKey != "" {
		llm = &summarize.LLMClient{
			Model:   cfg.LLM.Model,
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
		}
	} else {
		log.Printf("llm summarization disabled (enabled=%t key_present=%t)", cfg.LLM.Enabled, cfg.LLM.APIKey != "")
	}

	log.Printf("calibrating ambient noise for %.1fs, please stay quiet", cfg.CalibrateSec)
	source, err := audio.NewDeviceSource(audio.CaptureConfig{
		FFMPEGBin:    cfg.FFMPEGBin,
		DeviceIndex:  cfg.DeviceIndex,
		SampleRate:   cfg.SampleRate,
		CalibrateSec: cfg.CalibrateSec,
		Segmenter: audio.SegmenterConfig{
			PauseDur:     time.Duration(cfg.PauseThresholdMS) * time.Millisecond,
			MinSpeechDur: time.Duration(cfg.NonSpeakingMS) * time.Millisecond,
		},
	})
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer db.Close()

	met := metrics.New()
	coord := session.New(session.Options{
		Language:          cfg.Language,
		SummarizeInterval: time.Duration(cfg.SummarizeIntervalSec) * time.Second,
		RenderInterval:    time.Duration(cfg.RenderIntervalMS) * time.Millisecond,
		OutputDir:         cfg.OutputDir,
		FFMPEGBin:         cfg.FFMPEGBin,
		SampleRate:        cfg.SampleRate,
		Source:            source,
		Pool:              pool,
		Log:               transcript.NewLog(cfg.RecentWindow),
		Summarizer:        summarize.NewSummarizer(rules, llm),
		Store:             db,
		Metrics:           met,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.IngestDir != "" {
		if err := os.MkdirAll(cfg.IngestDir, 0o755); err != nil {
			return fmt.Errorf("ingest dir: %w", err)
		}
		jobs := queue.New(cfg.QueueSize, cfg.WorkerCount, time.Duration(cfg.JobTimeoutSec)*time.Second)
		jobs.Start(ctx)
		watcher := watch.New(cfg.IngestDir, jobs, coord)
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		if err := watcher.Backfill(ctx); err != nil {
			log.Printf("ingest backfill: %v", err)
		}
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			jobs.Stop(drainCtx)
		}()
	}

	err = coord.Run(ctx)
	snap := met.Snapshot()
	log.Printf("session stats recognized=%d unintelligible=%d service_errors=%d summary_passes=%d llm_fallbacks=%d ingested=%d",
		snap.SegmentsRecognized, snap.Unintelligible, snap.ServiceErrors, snap.SummaryPasses, snap.LLMFallbacks, snap.IngestedFiles)
	return err
}
