// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	LLM         LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Analyzer    AnalyzerConfig    `mapstructure:"analyzer" yaml:"analyzer"`
	Interpreter InterpreterConfig `mapstructure:"interpreter" yaml:"interpreter"`
	Executor    ExecutorConfig    `mapstructure:"executor" yaml:"executor"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	History     HistoryConfig     `mapstructure:"history" yaml:"history"`
	Assist      AssistConfig      `mapstructure:"assist" yaml:"assist"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// LLMProvider names a supported model backend.
type LLMProvider string

const (
	ProviderOllama LLMProvider = "ollama"
	ProviderGemini LLMProvider = "gemini"
)

// LLMConfig configures the language-model boundary.
type LLMConfig struct {
	Provider LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model    string        `mapstructure:"model" yaml:"model"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey   string        `mapstructure:"api_key" yaml:"-"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`

	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// AnalyzerConfig tunes the screen analysis pipeline. Area bands and the
// classification thresholds are empirical knobs, not a correctness contract.
type AnalyzerConfig struct {
	// Downscale is the linear shrink factor applied before detection
	// (3 means 1/3 of each dimension). 1 disables downscaling.
	Downscale int `mapstructure:"downscale" yaml:"downscale"`

	// EdgeThreshold is the Sobel gradient magnitude above which a pixel is
	// treated as an edge.
	EdgeThreshold int `mapstructure:"edge_threshold" yaml:"edge_threshold"`

	// MinRegionArea and MaxRegionArea bound candidate bounding boxes, in
	// full-resolution pixels.
	MinRegionArea int `mapstructure:"min_region_area" yaml:"min_region_area"`
	MaxRegionArea int `mapstructure:"max_region_area" yaml:"max_region_area"`

	// TextFieldAspect and TextFieldMaxHeight classify wide, low boxes as
	// text fields.
	TextFieldAspect    float64 `mapstructure:"text_field_aspect" yaml:"text_field_aspect"`
	TextFieldMaxHeight int     `mapstructure:"text_field_max_height" yaml:"text_field_max_height"`

	// MaxRegions caps how many detected regions survive into the snapshot.
	MaxRegions int `mapstructure:"max_regions" yaml:"max_regions"`

	// RegionOCRLimit is how many regions get a per-region OCR pass for
	// nearby-text sampling. 0 disables the extra passes.
	RegionOCRLimit int `mapstructure:"region_ocr_limit" yaml:"region_ocr_limit"`

	// ExtraOCRTools lists external commands (invoked as `tool <image.png>`,
	// text on stdout) merged with the primary engine's output.
	ExtraOCRTools []string `mapstructure:"extra_ocr_tools" yaml:"extra_ocr_tools"`

	// Interval is the background analysis cadence.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// InterpreterConfig tunes command interpretation.
type InterpreterConfig struct {
	// ScreenTextCap bounds how much extracted text is forwarded to the model.
	ScreenTextCap int `mapstructure:"screen_text_cap" yaml:"screen_text_cap"`
	Temperature   float64 `mapstructure:"temperature" yaml:"temperature"`
}

// ExecutorConfig tunes action execution and the safety interlock.
type ExecutorConfig struct {
	// FailsafeMargin is the corner sentinel size in pixels: a pointer within
	// this distance of any screen corner aborts the in-flight action.
	FailsafeMargin int `mapstructure:"failsafe_margin" yaml:"failsafe_margin"`

	// StepDelay is the fixed pause between multi-step task steps.
	StepDelay time.Duration `mapstructure:"step_delay" yaml:"step_delay"`

	// PointerSpeed scales trajectory duration; 1.0 is the default persona.
	PointerSpeed float64 `mapstructure:"pointer_speed" yaml:"pointer_speed"`

	// SearchURL is the query-URL prefix used for web searches.
	SearchURL string `mapstructure:"search_url" yaml:"search_url"`

	// MediaMarkers and the commerce signal words drive the recommendation
	// heuristics. They are configuration, not a correctness contract.
	MediaMarkers    []string `mapstructure:"media_markers" yaml:"media_markers"`
	CommerceSignals []string `mapstructure:"commerce_signals" yaml:"commerce_signals"`
}

// BrowserConfig selects how URLs are opened.
type BrowserConfig struct {
	// Controlled routes web actions through a managed chromedp session
	// instead of the OS default handler.
	Controlled bool          `mapstructure:"controlled" yaml:"controlled"`
	Headless   bool          `mapstructure:"headless" yaml:"headless"`
	NavTimeout time.Duration `mapstructure:"nav_timeout" yaml:"nav_timeout"`
}

// HistoryConfig configures the append-only interaction log.
type HistoryConfig struct {
	Path    string `mapstructure:"path" yaml:"path"`
	MaxSize int    `mapstructure:"max_size" yaml:"max_size"`
}

// AssistConfig tunes the assistant front-of-house behavior.
type AssistConfig struct {
	// ActivationHold is the auto-release timeout on the single-slot
	// activation gate.
	ActivationHold time.Duration `mapstructure:"activation_hold" yaml:"activation_hold"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "deskpilot")
	v.SetDefault("logger.log_file", "deskpilot.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	// -- LLM --
	v.SetDefault("llm.provider", string(ProviderOllama))
	v.SetDefault("llm.model", "llama3")
	v.SetDefault("llm.endpoint", "http://localhost:11434")
	v.SetDefault("llm.timeout", "20s")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)

	// -- Analyzer --
	v.SetDefault("analyzer.downscale", 3)
	v.SetDefault("analyzer.edge_threshold", 96)
	v.SetDefault("analyzer.min_region_area", 100)
	v.SetDefault("analyzer.max_region_area", 10000)
	v.SetDefault("analyzer.text_field_aspect", 4.0)
	v.SetDefault("analyzer.text_field_max_height", 40)
	v.SetDefault("analyzer.max_regions", 64)
	v.SetDefault("analyzer.region_ocr_limit", 8)
	v.SetDefault("analyzer.extra_ocr_tools", []string{})
	v.SetDefault("analyzer.interval", "5s")

	// -- Interpreter --
	v.SetDefault("interpreter.screen_text_cap", 1000)
	v.SetDefault("interpreter.temperature", 0.2)

	// -- Executor --
	v.SetDefault("executor.failsafe_margin", 2)
	v.SetDefault("executor.step_delay", "1s")
	v.SetDefault("executor.pointer_speed", 1.0)
	v.SetDefault("executor.search_url", "https://www.google.com/search?q=")
	v.SetDefault("executor.media_markers", []string{"official", "remix", "feat", "ft", "radio edit"})
	v.SetDefault("executor.commerce_signals", []string{"star", "rating", "review"})

	// -- Browser --
	v.SetDefault("browser.controlled", false)
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.nav_timeout", "30s")

	// -- History --
	v.SetDefault("history.path", "~/.deskpilot/history.json")
	v.SetDefault("history.max_size", 50)

	// -- Assist --
	v.SetDefault("assist.activation_hold", "2m")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults above; fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper builds and validates a configuration from a viper
// instance that already has file/env/flag sources applied.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.BindEnv("llm.api_key", "DESKPILOT_LLM_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOllama, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be one of [%s %s], got %q",
			ProviderOllama, ProviderGemini, c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be a positive duration")
	}
	if c.Analyzer.Downscale < 1 {
		return fmt.Errorf("analyzer.downscale must be >= 1")
	}
	if c.Analyzer.MinRegionArea >= c.Analyzer.MaxRegionArea {
		return fmt.Errorf("analyzer.min_region_area must be below analyzer.max_region_area")
	}
	if c.Interpreter.ScreenTextCap <= 0 {
		return fmt.Errorf("interpreter.screen_text_cap must be positive")
	}
	if c.Executor.FailsafeMargin < 0 {
		return fmt.Errorf("executor.failsafe_margin must not be negative")
	}
	if c.History.MaxSize <= 0 {
		return fmt.Errorf("history.max_size must be positive")
	}
	return nil
}

// expandPaths resolves "~" in user-facing path settings.
func (c *Config) expandPaths() error {
	if strings.HasPrefix(c.History.Path, "~") {
		expanded, err := homedir.Expand(c.History.Path)
		if err != nil {
			return fmt.Errorf("failed to expand history.path: %w", err)
		}
		c.History.Path = expanded
	}
	return nil
}
