package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration derived from environment variables
// and an optional YAML/JSON config file.
type Config struct {
	Language             string
	DeviceIndex          int
	SampleRate           int
	SummarizeIntervalSec int
	RenderIntervalMS     int
	RecentWindow         int
	PoolSize             int
	CalibrateSec         float64
	PauseThresholdMS     int
	NonSpeakingMS        int
	OutputDir            string
	DBPath               string
	IngestDir            string
	QueueSize            int
	WorkerCount          int
	JobTimeoutSec        int
	FFMPEGBin            string
	SpeechAPIKey         string
	StrictConfig         bool
	LLM                  LLMConfig
	Triggers             TriggersConfig
	TriggersConfigPath   string
}

// LLMConfig captures the optional generative summarizer settings.
type LLMConfig struct {
	Enabled bool
	Model   string
	BaseURL string
	APIKey  string
}

type fileConfig struct {
	Language             string         `json:"language" yaml:"language"`
	SampleRate           *int           `json:"sample_rate" yaml:"sample_rate"`
	SummarizeIntervalSec *int           `json:"summarize_interval_sec" yaml:"summarize_interval_sec"`
	RenderIntervalMS     *int           `json:"render_interval_ms" yaml:"render_interval_ms"`
	RecentWindow         *int           `json:"recent_window" yaml:"recent_window"`
	PoolSize             *int           `json:"pool_size" yaml:"pool_size"`
	OutputDir            string         `json:"output_dir" yaml:"output_dir"`
	DBPath               string         `json:"db_path" yaml:"db_path"`
	IngestDir            string         `json:"ingest_dir" yaml:"ingest_dir"`
	LLM                  llmFileConfig  `json:"llm" yaml:"llm"`
	Triggers             TriggersConfig `json:"triggers" yaml:"triggers"`
}

type llmFileConfig struct {
	Enabled *bool  `json:"enabled" yaml:"enabled"`
	Model   string `json:"model" yaml:"model"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

const (
	defaultLanguage          = "th-TH"
	defaultSampleRate        = 16000
	defaultSummarizeInterval = 30
	defaultRenderIntervalMS  = 600
	defaultRecentWindow      = 5
	defaultPoolSize          = 3
	defaultCalibrateSec      = 2.0
	defaultPauseThresholdMS  = 600
	defaultNonSpeakingMS     = 400
	defaultOutputDir         = "output_meeting"
	defaultDBFile            = "meetings.db"
	minQueueSize             = 1
	defaultQueueSize         = 16
	maxQueueSize             = 256
	defaultWorkerCount       = 2
	defaultJobTimeoutSec     = 60
)

func defaultLLMConfig() LLMConfig {
	return LLMConfig{
		Enabled: true,
		Model:   "gpt-4o-mini",
		BaseURL: "https://api.openai.com",
	}
}

// Load reads configuration from environment variables layered over the
// config file and baked-in defaults.
func Load() (Config, error) {
	cfg := Config{
		Language:             getEnv("LANGUAGE", defaultLanguage),
		DeviceIndex:          -1,
		SampleRate:           defaultSampleRate,
		SummarizeIntervalSec: defaultSummarizeInterval,
		RenderIntervalMS:     defaultRenderIntervalMS,
		RecentWindow:         defaultRecentWindow,
		PoolSize:             defaultPoolSize,
		CalibrateSec:         defaultCalibrateSec,
		PauseThresholdMS:     defaultPauseThresholdMS,
		NonSpeakingMS:        defaultNonSpeakingMS,
		QueueSize:            defaultQueueSize,
		WorkerCount:          defaultWorkerCount,
		JobTimeoutSec:        defaultJobTimeoutSec,
		FFMPEGBin:            getEnv("FFMPEG_BIN", "ffmpeg"),
		SpeechAPIKey:         os.Getenv("GOOGLE_SPEECH_RECOGNITION_API_KEY"),
		StrictConfig:         parseBoolEnv("STRICT_CONFIG"),
		LLM:                  defaultLLMConfig(),
	}

	configPath := getEnv("CONFIG_PATH", filepath.Join("config", "config.yaml"))
	triggersPath := getEnv("TRIGGERS_CONFIG_PATH", configPath)
	cfg.TriggersConfigPath = triggersPath

	fileCfg, fileErr := loadFileConfig(configPath)
	if fileErr != nil {
		if cfg.StrictConfig && !os.IsNotExist(fileErr) {
			return cfg, fmt.Errorf("config load failed (%s): %w", configPath, fileErr)
		}
		if !os.IsNotExist(fileErr) {
			log.Printf("config load failed (%s): %v (using defaults)", configPath, fileErr)
		}
	}

	if strings.TrimSpace(fileCfg.Language) != "" && os.Getenv("LANGUAGE") == "" {
		cfg.Language = strings.TrimSpace(fileCfg.Language)
	}
	applyIntOverride(&cfg.SampleRate, fileCfg.SampleRate)
	applyIntOverride(&cfg.SummarizeIntervalSec, fileCfg.SummarizeIntervalSec)
	applyIntOverride(&cfg.RenderIntervalMS, fileCfg.RenderIntervalMS)
	applyIntOverride(&cfg.RecentWindow, fileCfg.RecentWindow)
	applyIntOverride(&cfg.PoolSize, fileCfg.PoolSize)

	cfg.OutputDir = firstNonEmpty(os.Getenv("OUTPUT_DIR"), fileCfg.OutputDir, defaultOutputDir)
	cfg.DBPath = firstNonEmpty(os.Getenv("DB_PATH"), fileCfg.DBPath, filepath.Join(cfg.OutputDir, defaultDBFile))
	cfg.IngestDir = firstNonEmpty(os.Getenv("INGEST_DIR"), fileCfg.IngestDir)

	cfg.LLM = applyLLMOverrides(cfg.LLM, fileCfg.LLM)
	if v := os.Getenv("LLM_ENABLED"); strings.TrimSpace(v) != "" {
		cfg.LLM.Enabled = parseBoolEnv("LLM_ENABLED")
	}
	if v := strings.TrimSpace(os.Getenv("LLM_MODEL")); v != "" {
		cfg.LLM.Model = v
	}
	cfg.LLM.BaseURL = firstNonEmpty(
		os.Getenv("LLM_BASE_URL"),
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENAI_API_BASE"),
		cfg.LLM.BaseURL,
	)
	cfg.LLM.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	if v, ok, err := parseIntEnv("MIC_INDEX"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid MIC_INDEX: %w", err)
		}
		log.Printf("invalid MIC_INDEX: %v (using system default)", err)
	} else if ok {
		cfg.DeviceIndex = v
	}
	if v, ok, err := parseIntEnv("SUMMARIZE_INTERVAL_SEC"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid SUMMARIZE_INTERVAL_SEC: %w", err)
		}
		log.Printf("invalid SUMMARIZE_INTERVAL_SEC: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.SummarizeIntervalSec = v
	}
	if v, ok, err := parseIntEnv("RENDER_INTERVAL_MS"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid RENDER_INTERVAL_MS: %w", err)
		}
		log.Printf("invalid RENDER_INTERVAL_MS: %v (using default)", err)
	} else if ok && v > 0 {
		cfg.RenderIntervalMS = v
	}
	if v, ok, err := parseIntEnv("RECENT_WINDOW"); err == nil && ok && v > 0 {
		cfg.RecentWindow = v
	}
	if v, ok, err := parseIntEnv("POOL_SIZE"); err == nil && ok && v > 0 {
		cfg.PoolSize = v
	}

	if v := os.Getenv("WORKER_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("invalid WORKER_COUNT=%q, using default %d", v, defaultWorkerCount)
			n = defaultWorkerCount
		}
		cfg.WorkerCount = n
	}
	if v := os.Getenv("JOB_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid JOB_QUEUE_SIZE=%q, using default %d", v, defaultQueueSize)
			n = defaultQueueSize
		}
		if n < minQueueSize {
			log.Printf("JOB_QUEUE_SIZE raised to minimum %d (was %d)", minQueueSize, n)
			n = minQueueSize
		}
		if n > maxQueueSize {
			log.Printf("JOB_QUEUE_SIZE capped at %d (was %d)", maxQueueSize, n)
			n = maxQueueSize
		}
		cfg.QueueSize = n
	}
	if cfg.QueueSize < cfg.WorkerCount {
		log.Printf("JOB_QUEUE_SIZE must be >= WORKER_COUNT; using %d", cfg.WorkerCount)
		cfg.QueueSize = cfg.WorkerCount
	}
	if v := os.Getenv("JOB_TIMEOUT_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid JOB_TIMEOUT_SEC: %w", err)
		}
		if n <= 0 {
			return cfg, fmt.Errorf("JOB_TIMEOUT_SEC must be positive")
		}
		cfg.JobTimeoutSec = n
	}

	triggers := DefaultTriggersConfig()
	triggers = MergeTriggersConfig(triggers, fileCfg.Triggers)
	if triggersPath != configPath {
		overlay, err := LoadTriggersConfig(triggersPath)
		if err != nil {
			if cfg.StrictConfig {
				return cfg, fmt.Errorf("triggers config load failed (%s): %w", triggersPath, err)
			}
			log.Printf("triggers config load failed (%s): %v (using defaults)", triggersPath, err)
		} else {
			triggers = MergeTriggersConfig(triggers, overlay)
		}
	}
	cfg.Triggers = triggers

	if err := validateConfig(cfg); err != nil {
		if cfg.StrictConfig {
			return cfg, err
		}
		log.Printf("config validation failed: %v (continuing)", err)
	}

	return cfg, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("empty config file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Language) == "" {
		return errors.New("LANGUAGE is required")
	}
	if cfg.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}
	if cfg.SummarizeIntervalSec <= 0 {
		return errors.New("summarize interval must be positive")
	}
	if cfg.RenderIntervalMS <= 0 {
		return errors.New("render interval must be positive")
	}
	if cfg.RecentWindow <= 0 {
		return errors.New("recent window must be positive")
	}
	if cfg.PoolSize <= 0 {
		return errors.New("recognizer pool size must be positive")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return errors.New("OUTPUT_DIR is required")
	}
	return nil
}

func applyLLMOverrides(base LLMConfig, override llmFileConfig) LLMConfig {
	if override.Enabled != nil {
		base.Enabled = *override.Enabled
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = strings.TrimSpace(override.Model)
	}
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = strings.TrimSpace(override.BaseURL)
	}
	return base
}

func applyIntOverride(dst *int, override *int) {
	if override != nil && *override > 0 {
		*dst = *override
	}
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseIntEnv(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	val, err := strconv.Atoi(raw)
	return val, true, err
}
