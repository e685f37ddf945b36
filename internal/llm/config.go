package llm

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskGoalExtraction TaskType = "goal_extraction"
	TaskRoadmap        TaskType = "roadmap"
)

// Provider names a completion backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutMs   int     `yaml:"timeout_ms"` // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Provider   Provider                `yaml:"provider"`
	APIKey     string                  `yaml:"api_key"`
	Endpoint   string                  `yaml:"endpoint"`
	Model      string                  `yaml:"model"`
	LogCalls   bool                    `yaml:"log_calls"`
	TimeoutMs  int                     `yaml:"timeout_ms"`
	MaxRetries int                     `yaml:"max_retries"`
	Tasks      map[TaskType]TaskConfig `yaml:"tasks"`
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// Retries are off: a single upstream failure fails the request.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Provider:   ProviderGemini,
		Endpoint:   "http://localhost:11434",
		Model:      "gemini-2.0-flash",
		LogCalls:   true,
		TimeoutMs:  30000,
		MaxRetries: 0,
		Tasks: map[TaskType]TaskConfig{
			TaskGoalExtraction: {Temperature: 0.2, MaxTokens: 1024, TimeoutMs: 20000},
			TaskRoadmap:        {Temperature: 0.7, MaxTokens: 8192, TimeoutMs: 90000},
		},
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named by
// WAYPOINT_CONFIG (if set), then WAYPOINT_* environment variables.
func LoadConfig() (LLMConfig, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("WAYPOINT_CONFIG"); path != "" {
		if err := applyConfigFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("WAYPOINT_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(v)
	}
	if v := os.Getenv("WAYPOINT_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("WAYPOINT_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("WAYPOINT_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("WAYPOINT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("WAYPOINT_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	for _, name := range []string{"WAYPOINT_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			cfg.APIKey = v
			break
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskGoalExtraction, "WAYPOINT_LLM_GOAL_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskRoadmap, "WAYPOINT_LLM_ROADMAP_TIMEOUT_MS")

	return cfg, nil
}

// Validate reports configuration problems that must stop startup.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("%w: set WAYPOINT_API_KEY or GEMINI_API_KEY", ErrMissingCredential)
		}
	case ProviderOllama:
		if c.Endpoint == "" {
			return fmt.Errorf("ollama provider requires an endpoint")
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("llm model must be set")
	}
	return nil
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// applyConfigFile overlays non-zero values from a YAML file onto cfg.
func applyConfigFile(cfg *LLMConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var file LLMConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.Endpoint != "" {
		cfg.Endpoint = file.Endpoint
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.LogCalls {
		cfg.LogCalls = true
	}
	if file.TimeoutMs > 0 {
		cfg.TimeoutMs = file.TimeoutMs
	}
	if file.MaxRetries > 0 {
		cfg.MaxRetries = file.MaxRetries
	}
	for task, tc := range file.Tasks {
		merged := cfg.Tasks[task]
		if tc.Temperature > 0 {
			merged.Temperature = tc.Temperature
		}
		if tc.MaxTokens > 0 {
			merged.MaxTokens = tc.MaxTokens
		}
		if tc.TimeoutMs > 0 {
			merged.TimeoutMs = tc.TimeoutMs
		}
		cfg.Tasks[task] = merged
	}
	return nil
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
